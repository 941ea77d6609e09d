package triggers

import (
	"context"
	"testing"
	"time"

	"mercato-backend/models"
	"mercato-backend/store"
)

func newSuggestionStore() *store.MemStore {
	s := store.NewMemStore()
	d := NewDispatcher()
	RegisterOrderSuggestions(d, s)
	s.OnCommit(d.Listener())
	return s
}

func setInventory(t *testing.T, s store.Store, id string, qty, min, par float64) {
	t.Helper()
	data, err := store.DataFrom(models.InventoryItem{
		ItemName:       id,
		QuantityOnHand: qty,
		MinStockLevel:  min,
		ParLevel:       par,
	})
	if err != nil {
		t.Fatalf("encode inventory item: %v", err)
	}
	mustBatch(t, s, store.Set("inventoryItems/"+id, data))
}

func todaySuggestions(t *testing.T, s store.Store) []store.Document {
	t.Helper()
	today := time.Now().UTC().Format(dateKeyLayout)
	docs, err := s.Documents(context.Background(), models.SuggestionsCollection(today))
	if err != nil {
		t.Fatalf("listing suggestions failed: %v", err)
	}
	return docs
}

func TestSuggestionCreatedOnThresholdCross(t *testing.T) {
	s := newSuggestionStore()

	setInventory(t, s, "flour", 10, 5, 20)
	setInventory(t, s, "flour", 3, 5, 20)

	docs := todaySuggestions(t, s)
	if len(docs) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(docs))
	}
	var sg models.OrderSuggestion
	if err := docs[0].DataTo(&sg); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if sg.ItemID != "flour" {
		t.Errorf("expected itemId flour, got %q", sg.ItemID)
	}
	if sg.QuantityToOrder != 17 {
		t.Errorf("expected quantityToOrder 17, got %v", sg.QuantityToOrder)
	}
	if sg.Status != models.SuggestionStatusPending {
		t.Errorf("expected pending status, got %q", sg.Status)
	}
}

func TestSuggestionDeduplicatedPerDay(t *testing.T) {
	s := newSuggestionStore()

	setInventory(t, s, "flour", 10, 5, 20)
	setInventory(t, s, "flour", 3, 5, 20)
	// Crosses further below the threshold the same day.
	setInventory(t, s, "flour", 1, 5, 20)

	if docs := todaySuggestions(t, s); len(docs) != 1 {
		t.Fatalf("expected 1 suggestion after second drop, got %d", len(docs))
	}
}

func TestSuggestionSeparateItemsSeparateSuggestions(t *testing.T) {
	s := newSuggestionStore()

	setInventory(t, s, "flour", 10, 5, 20)
	setInventory(t, s, "eggs", 30, 12, 60)
	setInventory(t, s, "flour", 3, 5, 20)
	setInventory(t, s, "eggs", 6, 12, 60)

	if docs := todaySuggestions(t, s); len(docs) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(docs))
	}
}

func TestSuggestionNotCreatedWhenQuantityIncreases(t *testing.T) {
	s := newSuggestionStore()

	setInventory(t, s, "flour", 2, 5, 20)
	// Restock: still below min but not a decrease.
	setInventory(t, s, "flour", 4, 5, 20)

	if docs := todaySuggestions(t, s); len(docs) != 0 {
		t.Fatalf("expected no suggestion on restock, got %d", len(docs))
	}
}

func TestSuggestionNotCreatedAboveMinimum(t *testing.T) {
	s := newSuggestionStore()

	setInventory(t, s, "flour", 10, 5, 20)
	setInventory(t, s, "flour", 7, 5, 20)

	if docs := todaySuggestions(t, s); len(docs) != 0 {
		t.Fatalf("expected no suggestion above minimum, got %d", len(docs))
	}
}

func TestSuggestionNotCreatedForNonPositiveOrder(t *testing.T) {
	s := newSuggestionStore()

	// Par level below the new quantity: nothing worth ordering.
	setInventory(t, s, "flour", 10, 5, 2)
	setInventory(t, s, "flour", 3, 5, 2)

	if docs := todaySuggestions(t, s); len(docs) != 0 {
		t.Fatalf("expected no suggestion for non-positive order quantity, got %d", len(docs))
	}
}

func TestSuggestionIgnoresCreation(t *testing.T) {
	s := newSuggestionStore()

	// First write is a create, not an update; no before snapshot to compare.
	setInventory(t, s, "flour", 3, 5, 20)

	if docs := todaySuggestions(t, s); len(docs) != 0 {
		t.Fatalf("expected no suggestion on item creation, got %d", len(docs))
	}
}
