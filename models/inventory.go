package models

import "time"

// InventoryItem is an inventoryItems/{id} document. Quantities are floats
// because stock is counted in fractional units (kg, litres).
type InventoryItem struct {
	ItemName       string  `json:"itemName"`
	QuantityOnHand float64 `json:"quantityOnHand"`
	MinStockLevel  float64 `json:"minStockLevel"`
	ParLevel       float64 `json:"parLevel"`
	SupplierID     string  `json:"supplierId,omitempty"`
	Unit           string  `json:"unit,omitempty"`
}

// SuggestionStatusPending is the status every new suggestion starts in.
const SuggestionStatusPending = "pending"

// OrderSuggestion is a dailyOrderingSuggestions/{date}/suggestions/{id}
// document, at most one per (day, inventory item).
type OrderSuggestion struct {
	ItemID          string    `json:"itemId"`
	ItemName        string    `json:"itemName"`
	QuantityToOrder float64   `json:"quantityToOrder"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}
