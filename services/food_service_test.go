package services

import (
	"errors"
	"testing"
)

func TestSaveFoodAndProjection(t *testing.T) {
	f := newFixture(t)

	iqID, err := f.foods.SaveFood(chickenEntry(), 1)
	if err != nil {
		t.Fatalf("SaveFood: %v", err)
	}

	row, err := f.foods.GetFood(iqID)
	if err != nil {
		t.Fatalf("GetFood: %v", err)
	}
	if row.Qty != 100 || row.Unit != "g" || row.Ingredient != "chicken breast" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if got := f64(t, row.Kcal); got != 200 {
		t.Fatalf("projected kcal = %v, want 200", got)
	}
	if got := f64(t, row.Protein); got != 40 {
		t.Fatalf("projected protein = %v, want 40", got)
	}
}

func TestSaveFoodDeduplicates(t *testing.T) {
	f := newFixture(t)

	id1, err := f.foods.SaveFood(chickenEntry(), 1)
	if err != nil {
		t.Fatalf("SaveFood: %v", err)
	}
	id2, err := f.foods.SaveFood(chickenEntry(), 1)
	if err != nil {
		t.Fatalf("SaveFood again: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("same measurement produced two rows: %d, %d", id1, id2)
	}

	rows, err := f.foods.ListFoods()
	if err != nil {
		t.Fatalf("ListFoods: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("catalog has %d rows, want 1", len(rows))
	}
}

func TestSaveFoodServingsScaling(t *testing.T) {
	f := newFixture(t)

	// 2 servings: registered quantity is halved, absolute macros survive.
	iqID, err := f.foods.SaveFood(chickenEntry(), 2)
	if err != nil {
		t.Fatalf("SaveFood: %v", err)
	}
	row, err := f.foods.GetFood(iqID)
	if err != nil {
		t.Fatalf("GetFood: %v", err)
	}
	if row.Qty != 50 {
		t.Fatalf("qty = %v, want 50", row.Qty)
	}
	if got := f64(t, row.Kcal); got != 200 {
		t.Fatalf("kcal = %v, want 200", got)
	}
}

func TestUpdateFoodRewritesRate(t *testing.T) {
	f := newFixture(t)
	iqID, _ := f.foods.SaveFood(chickenEntry(), 1)

	updated := chickenEntry()
	updated.Kcal = 100
	if err := f.foods.UpdateFood(iqID, updated); err != nil {
		t.Fatalf("UpdateFood: %v", err)
	}

	row, _ := f.foods.GetFood(iqID)
	if got := f64(t, row.Kcal); got != 100 {
		t.Fatalf("kcal after update = %v, want 100", got)
	}
}

func TestDeleteIngredientCascades(t *testing.T) {
	f := newFixture(t)
	iqID, _ := f.foods.SaveFood(chickenEntry(), 1)
	row, _ := f.foods.GetFood(iqID)

	if _, err := f.foods.ToggleFavorite(row.IngredientID); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if err := f.foods.DeleteIngredient(row.IngredientID); err != nil {
		t.Fatalf("DeleteIngredient: %v", err)
	}

	if _, err := f.foods.GetFood(iqID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after cascade, got %v", err)
	}
	favorites, _ := f.foods.FavoriteIDs()
	if len(favorites) != 0 {
		t.Fatalf("favorite row survived the cascade: %v", favorites)
	}
}

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t)
	iqID, _ := f.foods.SaveFood(chickenEntry(), 1)
	row, _ := f.foods.GetFood(iqID)

	on, err := f.foods.ToggleFavorite(row.IngredientID)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !on {
		t.Fatalf("first toggle should favor")
	}
	off, err := f.foods.ToggleFavorite(row.IngredientID)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if off {
		t.Fatalf("second toggle should unfavor")
	}
}

func TestListFoodsPage(t *testing.T) {
	f := newFixture(t)
	if _, err := f.foods.SaveFood(chickenEntry(), 1); err != nil {
		t.Fatalf("SaveFood: %v", err)
	}
	if _, err := f.foods.SaveFood(riceEntry(), 1); err != nil {
		t.Fatalf("SaveFood: %v", err)
	}

	page, err := f.foods.ListFoodsPage(FoodPageOptions{Page: 1, PerPage: 1})
	if err != nil {
		t.Fatalf("ListFoodsPage: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("total = %d, want 2", page.Total)
	}
	if len(page.Items) != 1 {
		t.Fatalf("page has %d rows, want 1", len(page.Items))
	}

	search, err := f.foods.ListFoodsPage(FoodPageOptions{Search: "chick", Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListFoodsPage search: %v", err)
	}
	if len(search.Items) != 1 || search.Items[0].Ingredient != "chicken breast" {
		t.Fatalf("search result wrong: %+v", search.Items)
	}

	minKcal := 150.0
	filtered, err := f.foods.ListFoodsPage(FoodPageOptions{MinKcal: &minKcal, Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListFoodsPage filter: %v", err)
	}
	if len(filtered.Items) != 1 || filtered.Items[0].Ingredient != "chicken breast" {
		t.Fatalf("kcal filter wrong: %+v", filtered.Items)
	}
}

func TestListFoodsPageFavoritesOnly(t *testing.T) {
	f := newFixture(t)
	iqID, _ := f.foods.SaveFood(chickenEntry(), 1)
	if _, err := f.foods.SaveFood(riceEntry(), 1); err != nil {
		t.Fatalf("SaveFood: %v", err)
	}
	row, _ := f.foods.GetFood(iqID)
	if _, err := f.foods.ToggleFavorite(row.IngredientID); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}

	page, err := f.foods.ListFoodsPage(FoodPageOptions{FavoritesOnly: true, Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListFoodsPage: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Ingredient != "chicken breast" {
		t.Fatalf("favorites filter wrong: %+v", page.Items)
	}
	if !page.Items[0].IsFavorite {
		t.Fatalf("favorite row not marked")
	}
}
