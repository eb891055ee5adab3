// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Stores de janela (domain.WindowStore):
//   - WindowStore: sliding-window log em memória, shardado, com janitor de chaves ociosas
//   - RedisWindowStore: o mesmo algoritmo em ZSET + script Lua, compartilhado entre réplicas
//   - BucketStore: token bucket aproximado usando golang.org/x/time/rate
//
// Stores de estatística (domain.StatsStore): memória, Redis e Prometheus.
package infra
