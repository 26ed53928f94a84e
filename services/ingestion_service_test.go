package services

import (
	"errors"
	"testing"
	"time"

	"backend/utils"
)

const batchText = `qty, unit, ingr, carbs, fats, protein, net_carbs, fiber, kcal
100, g, chicken breast, 0, 4, 40, 0, 0, 200
50, g, rice, 22, 0.5, 2, 21.5, 0.5, 100`

func newIngestion(t *testing.T) (*IngestionService, *fixture) {
	t.Helper()
	f := newFixture(t)
	return NewIngestionService(f.foods, utils.NewMetrics()), f
}

func TestParseBatch(t *testing.T) {
	svc, _ := newIngestion(t)

	result, err := svc.ParseBatch(batchText)
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	if len(result.Rows) != 2 || result.Rejected != 0 {
		t.Fatalf("result = %+v", result)
	}
	if result.Rows[0].Ingredient != "chicken breast" || result.Rows[0].Kcal != 200 {
		t.Fatalf("row 0 wrong: %+v", result.Rows[0])
	}
	if result.Rows[1].NetCarb != 21.5 {
		t.Fatalf("row 1 net carbs = %v, want 21.5", result.Rows[1].NetCarb)
	}
}

func TestParseBatchHeaderOrderIrrelevant(t *testing.T) {
	svc, _ := newIngestion(t)

	shuffled := `kcal, ingr, qty, unit, protein, fats, carbs, fiber, net_carbs
200, chicken breast, 100, g, 40, 4, 0, 0, 0`
	result, err := svc.ParseBatch(shuffled)
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(result.Rows))
	}
	row := result.Rows[0]
	if row.Qty != 100 || row.Kcal != 200 || row.Protein != 40 {
		t.Fatalf("columns misassigned: %+v", row)
	}
}

func TestParseBatchDropsMalformedRows(t *testing.T) {
	svc, _ := newIngestion(t)

	text := `qty, unit, ingr, carbs, fats, protein, net_carbs, fiber, kcal
100, g, chicken breast, 0, 4, 40, 0, 0, 200
not-a-number, g, mystery, 0, 0, 0, 0, 0, 0
50, g, rice, 22, 0.5, 2, 21.5, 0.5`
	result, err := svc.ParseBatch(text)
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(result.Rows))
	}
	if result.Rejected != 2 {
		t.Fatalf("rejected = %d, want 2", result.Rejected)
	}
}

func TestParseBatchMissingColumn(t *testing.T) {
	svc, _ := newIngestion(t)

	text := `qty, unit, ingr
100, g, chicken`
	if _, err := svc.ParseBatch(text); !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
}

func TestSaveBatch(t *testing.T) {
	svc, f := newIngestion(t)

	parsed, err := svc.ParseBatch(batchText)
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	result, err := svc.SaveBatch(parsed.Rows, 1)
	if err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	if result.Accepted != 2 || len(result.QuantityIDs) != 2 {
		t.Fatalf("result = %+v", result)
	}

	foods, _ := f.foods.ListFoods()
	if len(foods) != 2 {
		t.Fatalf("catalog rows = %d, want 2", len(foods))
	}
}

func TestStashPeekTake(t *testing.T) {
	svc, _ := newIngestion(t)
	rows := []FoodEntry{chickenEntry()}

	handle := svc.Stash(rows)

	peeked, err := svc.Peek(handle)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if len(peeked) != 1 {
		t.Fatalf("peeked rows = %d, want 1", len(peeked))
	}
	// Peek does not consume
	if _, err := svc.Peek(handle); err != nil {
		t.Fatalf("second Peek: %v", err)
	}

	taken, err := svc.Take(handle)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if len(taken) != 1 {
		t.Fatalf("taken rows = %d, want 1", len(taken))
	}
	if _, err := svc.Take(handle); !errors.Is(err, ErrNotFound) {
		t.Fatalf("handle survived Take: %v", err)
	}
}

func TestStashExpires(t *testing.T) {
	svc, _ := newIngestion(t)
	handle := svc.Stash([]FoodEntry{chickenEntry()})

	svc.mu.Lock()
	svc.sessions[handle].expires = time.Now().Add(-time.Minute)
	svc.mu.Unlock()

	if _, err := svc.Peek(handle); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired handle, got %v", err)
	}
}

func TestUnknownHandle(t *testing.T) {
	svc, _ := newIngestion(t)
	if _, err := svc.Peek("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
