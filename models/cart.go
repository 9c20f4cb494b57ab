package models

import "github.com/shopspring/decimal"

// CartItem is a product snapshot captured when it was added to the cart.
// Its price is what the client saw, not a catalog lookup.
type CartItem struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// CartTotal sums the entry prices exactly.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}

// CartProductIDs returns the product references in cart order, duplicates kept.
func CartProductIDs(items []CartItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
