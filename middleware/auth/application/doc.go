// Package application contém o caso de uso de autenticação: dado o valor bruto
// do header Authorization, devolve (ou não) uma identidade.
//
// Não conhece net/http e nunca rejeita um request; quem barra requests sem
// identidade é a autorização, mais abaixo.
package application
