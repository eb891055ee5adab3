// Package application contém o caso de uso do rate limit: dada uma chave de
// cliente e o instante atual, decide allow/deny e calcula o Retry-After.
//
// Ele depende apenas do pacote domain e não conhece net/http.
package application
