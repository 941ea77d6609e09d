package triggers

import (
	"context"
	"fmt"
	"time"

	"mercato-backend/logger"
	"mercato-backend/models"
	"mercato-backend/store"

	"github.com/google/uuid"
)

const dateKeyLayout = "2006-01-02"

// RegisterOrderSuggestions subscribes reorder suggestion creation to
// inventory updates. A suggestion is created only when the quantity on hand
// strictly decreased and landed at or below the minimum stock level, at
// most once per item per day, and only for a positive order quantity
// (par level minus new quantity).
func RegisterOrderSuggestions(d *Dispatcher, st store.Store) {
	log := logger.WithComponent("order-suggestions")

	d.Register("inventoryItems/{itemId}", store.ChangeUpdated,
		func(ctx context.Context, ev Event) error {
			oldQty, ok := fieldFloat(ev.Before, "quantityOnHand")
			if !ok {
				return nil
			}
			newQty, ok := fieldFloat(ev.After, "quantityOnHand")
			if !ok {
				return nil
			}
			minStock, _ := fieldFloat(ev.After, "minStockLevel")
			parLevel, _ := fieldFloat(ev.After, "parLevel")

			if newQty >= oldQty || newQty > minStock {
				return nil
			}

			itemID := ev.Params["itemId"]
			today := time.Now().UTC().Format(dateKeyLayout)
			col := models.SuggestionsCollection(today)

			// One suggestion per (day, item); a second threshold crossing
			// the same day is a no-op.
			existing, err := st.Documents(ctx, col, store.Where("itemId", "==", itemID))
			if err != nil {
				return fmt.Errorf("querying suggestions: %w", err)
			}
			if len(existing) > 0 {
				return nil
			}

			quantityToOrder := parLevel - newQty
			if quantityToOrder <= 0 {
				return nil
			}

			itemName, _ := ev.After["itemName"].(string)
			suggestion := models.OrderSuggestion{
				ItemID:          itemID,
				ItemName:        itemName,
				QuantityToOrder: quantityToOrder,
				Status:          models.SuggestionStatusPending,
				CreatedAt:       time.Now().UTC(),
			}
			data, err := store.DataFrom(suggestion)
			if err != nil {
				return err
			}

			path := fmt.Sprintf("%s/%s", col, uuid.NewString())
			if err := st.BatchWrite(ctx, []store.Write{store.Set(path, data)}); err != nil {
				return fmt.Errorf("writing suggestion: %w", err)
			}

			log.Info().Str("item", itemID).Float64("quantity", quantityToOrder).Msg("created order suggestion")
			return nil
		})
}

func fieldFloat(data map[string]any, field string) (float64, bool) {
	if data == nil {
		return 0, false
	}
	switch n := data[field].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
