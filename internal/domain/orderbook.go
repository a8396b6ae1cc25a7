package domain

import (
	"github.com/samber/lo"
)

// BestSellOrder выбирает ордер с минимальной ценой. При равных ценах побеждает первый.
func BestSellOrder(orders []SellOrder) (SellOrder, error) {
	if len(orders) == 0 {
		return SellOrder{}, ErrNoLiquidity
	}

	return lo.MinBy(orders, func(a, b SellOrder) bool {
		return a.Price.LessThan(b.Price)
	}), nil
}
