package odds

import "errors"

// Helpers de odds americanas: inteiro com sinal, favorito negativo
// (arrisca |price| pra ganhar 100) e azarão positivo (arrisca 100 pra
// ganhar price). Não existe preço entre -100 e +100 exclusive.

var ErrInvalidPrice = errors.New("invalid american price")

// Valid verifica se o preço está na faixa válida de odds americanas (|p| >= 100)
func Valid(price int) bool {
	if price < 0 {
		price = -price
	}
	return price >= 100
}

// Decimal converte odds americanas para payout decimal por unidade apostada
// ex: +150 => 2.50, -110 => 1.909...
func Decimal(price int) float64 {
	if price > 0 {
		return 1 + float64(price)/100
	}
	return 1 + 100/float64(-price)
}

// Cents projeta o preço numa escala contínua de "cents", fechando o
// buraco entre -100 e +100 (+100 ≡ -100 ≡ 0). Maior = melhor pro apostador.
// ex: Cents(+150) = 50, Cents(-110) = -10
func Cents(price int) int {
	if price > 0 {
		return price - 100
	}
	return price + 100
}

// CentsWorse retorna quantos cents o preço é pior que a referência;
// 0 se for igual ou melhor. A comparação atravessa o limite ±100:
// -105 é 5 cents pior que +100.
func CentsWorse(price, ref int) int {
	d := Cents(ref) - Cents(price)
	if d < 0 {
		return 0
	}
	return d
}

// Better informa se o preço a paga mais que o preço b
func Better(a, b int) bool {
	return Cents(a) > Cents(b)
}
