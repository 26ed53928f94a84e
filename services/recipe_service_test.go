package services

import (
	"errors"
	"testing"

	"backend/models"
)

func TestCreateRecipePerServing(t *testing.T) {
	f := newFixture(t)

	result, err := f.recipes.CreateRecipe("chicken rice", "05.03.2024", 2, []FoodEntry{chickenEntry(), riceEntry()})
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	if result.Accepted != 2 || result.Rejected != 0 {
		t.Fatalf("batch result = %+v", result)
	}

	recipes, err := f.recipes.ListRecipes()
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("recipes = %d, want 1", len(recipes))
	}
	// absolute sums keep the full entered macros regardless of servings
	if got := f64(t, recipes[0].Kcal); got != 300 {
		t.Fatalf("recipe kcal = %v, want 300", got)
	}

	detail, err := f.recipes.RecipeDetail(recipes[0].ID)
	if err != nil {
		t.Fatalf("RecipeDetail: %v", err)
	}
	if len(detail.Ingredients) != 2 {
		t.Fatalf("ingredients = %d, want 2", len(detail.Ingredients))
	}
	if detail.PerServing.Calories != 150 {
		t.Fatalf("per-serving kcal = %v, want 150", detail.PerServing.Calories)
	}
}

func TestCreateRecipeRowIsolation(t *testing.T) {
	f := newFixture(t)

	bad := chickenEntry()
	bad.Qty = 0
	result, err := f.recipes.CreateRecipe("partial", "", 1, []FoodEntry{riceEntry(), bad})
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	if result.Accepted != 1 || result.Rejected != 1 {
		t.Fatalf("batch result = %+v, want 1 accepted / 1 rejected", result)
	}
}

func TestCreateRecipeAllRowsBad(t *testing.T) {
	f := newFixture(t)

	bad := chickenEntry()
	bad.Qty = -1
	_, err := f.recipes.CreateRecipe("hopeless", "", 1, []FoodEntry{bad})
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
}

func TestAddRecipeToMealAsItem(t *testing.T) {
	f := newFixture(t)
	f.recipes.CreateRecipe("chicken rice", "", 2, []FoodEntry{chickenEntry(), riceEntry()})
	recipes, _ := f.recipes.ListRecipes()
	id := recipes[0].ID

	if err := f.recipes.AddRecipeToMeal(id, models.MealDinner, 1, "05.03.2024", AsRecipeItem); err != nil {
		t.Fatalf("AddRecipeToMeal: %v", err)
	}

	rows, err := f.recipes.RecipeConsumptionFor("05.03.2024")
	if err != nil {
		t.Fatalf("RecipeConsumptionFor: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("recipe consumption rows = %d, want 1", len(rows))
	}
	// one of two servings: half the recipe total
	if got := f64(t, rows[0].Kcal); got != 150 {
		t.Fatalf("scaled kcal = %v, want 150", got)
	}

	// ingredient ledger untouched in item mode
	ledger, _ := f.meals.FetchAllConsumption()
	if len(ledger) != 0 {
		t.Fatalf("ledger rows = %d, want 0", len(ledger))
	}
}

func TestAddRecipeToMealReplaceServings(t *testing.T) {
	f := newFixture(t)
	f.recipes.CreateRecipe("chicken rice", "", 2, []FoodEntry{chickenEntry(), riceEntry()})
	recipes, _ := f.recipes.ListRecipes()
	id := recipes[0].ID

	f.recipes.AddRecipeToMeal(id, models.MealDinner, 1, "05.03.2024", AsRecipeItem)
	if err := f.recipes.AddRecipeToMeal(id, models.MealDinner, 2, "05.03.2024", AsRecipeItem); err != nil {
		t.Fatalf("AddRecipeToMeal repeat: %v", err)
	}

	rows, _ := f.recipes.RecipeConsumptionFor("05.03.2024")
	if len(rows) != 1 {
		t.Fatalf("duplicate entry created: %d rows", len(rows))
	}
	if rows[0].Servings != 2 {
		t.Fatalf("servings = %v, want 2 (replaced)", rows[0].Servings)
	}
}

func TestAddRecipeToMealExpanded(t *testing.T) {
	f := newFixture(t)
	f.recipes.CreateRecipe("chicken rice", "", 2, []FoodEntry{chickenEntry(), riceEntry()})
	recipes, _ := f.recipes.ListRecipes()
	id := recipes[0].ID

	if err := f.recipes.AddRecipeToMeal(id, models.MealLunch, 2, "05.03.2024", AsExpandedIngredients); err != nil {
		t.Fatalf("AddRecipeToMeal: %v", err)
	}

	ledger, _ := f.meals.FetchAllConsumption()
	if len(ledger) != 2 {
		t.Fatalf("ledger rows = %d, want 2 (one per ingredient)", len(ledger))
	}
	// chicken was registered at 50g per serving; two servings is 100g
	var found bool
	for _, row := range ledger {
		if row.Ingredient == "chicken breast" {
			found = true
			if row.Qty != 100 {
				t.Fatalf("chicken qty = %v, want 100", row.Qty)
			}
		}
	}
	if !found {
		t.Fatalf("chicken missing from expanded ledger: %+v", ledger)
	}

	// no single-recipe entry in expanded mode
	rows, _ := f.recipes.RecipeConsumptionFor("05.03.2024")
	if len(rows) != 0 {
		t.Fatalf("recipe consumption rows = %d, want 0", len(rows))
	}
}

func TestAddRecipeToMealRequiresMode(t *testing.T) {
	f := newFixture(t)
	f.recipes.CreateRecipe("chicken rice", "", 1, []FoodEntry{chickenEntry()})
	recipes, _ := f.recipes.ListRecipes()

	if err := f.recipes.AddRecipeToMeal(recipes[0].ID, models.MealLunch, 1, "", AddMode("")); err == nil {
		t.Fatalf("expected an error for missing mode")
	}
}

func TestUpdateRecipeVariationName(t *testing.T) {
	f := newFixture(t)
	f.recipes.CreateRecipe("chicken rice", "", 2, []FoodEntry{chickenEntry()})
	recipes, _ := f.recipes.ListRecipes()

	if _, err := f.recipes.UpdateRecipe(recipes[0].ID, "chicken rice", 2, []FoodEntry{riceEntry()}, true); err != nil {
		t.Fatalf("UpdateRecipe variation: %v", err)
	}

	recipes, _ = f.recipes.ListRecipes()
	if len(recipes) != 2 {
		t.Fatalf("recipes = %d, want 2 (original + variation)", len(recipes))
	}
	names := map[string]bool{}
	for _, r := range recipes {
		names[r.Name] = true
	}
	if !names["chicken rice (v2)"] {
		t.Fatalf("variation name missing: %v", names)
	}
}

func TestDeleteRecipe(t *testing.T) {
	f := newFixture(t)
	f.recipes.CreateRecipe("chicken rice", "", 1, []FoodEntry{chickenEntry()})
	recipes, _ := f.recipes.ListRecipes()

	if err := f.recipes.DeleteRecipe(recipes[0].ID); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	recipes, _ = f.recipes.ListRecipes()
	if len(recipes) != 0 {
		t.Fatalf("recipe survived deletion")
	}
	if err := f.recipes.DeleteRecipe(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecipeUsageCount(t *testing.T) {
	f := newFixture(t)
	f.recipes.CreateRecipe("chicken rice", "", 1, []FoodEntry{chickenEntry()})
	recipes, _ := f.recipes.ListRecipes()
	id := recipes[0].ID

	f.recipes.AddRecipeToMeal(id, models.MealLunch, 1, "05.03.2024", AsRecipeItem)
	f.recipes.AddRecipeToMeal(id, models.MealDinner, 1, "05.03.2024", AsRecipeItem)

	n, err := f.recipes.RecipeUsageCount(id)
	if err != nil {
		t.Fatalf("RecipeUsageCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("usage = %d, want 2", n)
	}
}

func TestDailyMealsIncludesRecipeItems(t *testing.T) {
	f := newFixture(t)
	f.recipes.CreateRecipe("chicken rice", "", 2, []FoodEntry{chickenEntry(), riceEntry()})
	recipes, _ := f.recipes.ListRecipes()
	f.recipes.AddRecipeToMeal(recipes[0].ID, models.MealDinner, 1, "05.03.2024", AsRecipeItem)

	view, err := f.meals.DailyMeals("05.03.2024")
	if err != nil {
		t.Fatalf("DailyMeals: %v", err)
	}
	dinner := view.MealsByType[models.MealDinner]
	if len(dinner) != 1 {
		t.Fatalf("dinner items = %d, want 1", len(dinner))
	}
	if !dinner[0].IsRecipe {
		t.Fatalf("recipe item not flagged")
	}
	if dinner[0].Ingredient != "[Recipe] chicken rice" {
		t.Fatalf("recipe item label = %q", dinner[0].Ingredient)
	}
	if view.DailyTotals.Calories != 150 {
		t.Fatalf("daily calories = %v, want 150", view.DailyTotals.Calories)
	}
}
