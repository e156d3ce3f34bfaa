package models

import (
	"github.com/shopspring/decimal"
)

// Денежная арифметика идет через decimal с округлением до копеек,
// чтобы цепочка balance_after сходилась точно, без накопления
// погрешности float64 (0.1 + 0.2 и т.п.).

// ApplyAmount возвращает новый баланс после применения транзакции.
func ApplyAmount(balance float64, kind TransactionKind, amount float64) float64 {
	b := decimal.NewFromFloat(balance)
	a := decimal.NewFromFloat(amount)
	if kind == KindWithdrawal {
		return b.Sub(a).Round(2).InexactFloat64()
	}
	return b.Add(a).Round(2).InexactFloat64()
}

// SumSigned суммирует транзакции со знаком: депозиты прибавляются,
// снятия вычитаются. Используется проверкой целостности и выписками.
func SumSigned(txns []Transaction) float64 {
	total := decimal.Zero
	for i := range txns {
		a := decimal.NewFromFloat(txns[i].Amount)
		if txns[i].Kind == KindWithdrawal {
			total = total.Sub(a)
		} else {
			total = total.Add(a)
		}
	}
	return total.Round(2).InexactFloat64()
}

// SameMoney сравнивает две суммы с точностью до копейки.
func SameMoney(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
