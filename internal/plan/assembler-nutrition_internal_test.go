package plan

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mlefevre/fitplan/internal/testhelpers"
)

// fakeDishCatalog records queries and answers them via find.
type fakeDishCatalog struct {
	queries []DishQuery
	find    func(q DishQuery) *Dish
}

func (f *fakeDishCatalog) FindCompatibleDish(_ context.Context, q DishQuery) (*Dish, error) {
	f.queries = append(f.queries, q)
	if f.find == nil {
		return nil, nil
	}
	return f.find(q), nil
}

func threeDayObjective() Objective {
	return Objective{
		Category: ObjectiveWeightLoss,
		Start:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
	}
}

func testNutritionParams() NutritionParameters {
	return NutritionParameters{
		DailyCalories: 2477,
		MealTemplate:  mealTemplateFour,
		ExcludedFoods: []string{"Viande"},
	}
}

func TestNutritionAssemblerSlotLayout(t *testing.T) {
	t.Parallel()

	catalog := &fakeDishCatalog{find: func(q DishQuery) *Dish {
		return &Dish{ID: 1, Name: "Plat test", Category: q.Category, Calories: 100}
	}}
	assembler := newNutritionAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	sub, err := assembler.Assemble(context.Background(), threeDayObjective(), testNutritionParams())
	if err != nil {
		t.Fatalf("Assemble returned unexpected error: %v", err)
	}

	// Three days, four slots each.
	if len(sub.Slots) != 12 {
		t.Fatalf("got %d slots, want 12", len(sub.Slots))
	}

	var firstDay []string
	for _, slot := range sub.Slots[:4] {
		firstDay = append(firstDay, slot.MealType)
	}
	want := []string{"Petit-déjeuner", "Déjeuner", "Collation", "Dîner"}
	if diff := cmp.Diff(want, firstDay); diff != "" {
		t.Errorf("first day meal types mismatch (-want +got):\n%s", diff)
	}

	for _, slot := range sub.Slots {
		if slot.Date.Before(threeDayObjective().Start) || slot.Date.After(threeDayObjective().End) {
			t.Errorf("slot date %s outside objective range", slot.Date.Format(time.DateOnly))
		}
	}
}

func TestNutritionAssemblerMainSlotComposition(t *testing.T) {
	t.Parallel()

	dishes := map[DishCategory]*Dish{
		DishMain:    {ID: 1, Name: "Plat", Category: DishMain, Calories: 450},
		DishStarter: {ID: 2, Name: "Entrée", Category: DishStarter, Calories: 90},
		DishDessert: {ID: 3, Name: "Dessert", Category: DishDessert, Calories: 70},
	}
	catalog := &fakeDishCatalog{find: func(q DishQuery) *Dish {
		return dishes[q.Category]
	}}
	assembler := newNutritionAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	var slot MealSlot
	slot.MealType = "Déjeuner"
	// Daily 2477 over 4 meals gives a 619 kcal budget.
	if err := assembler.fillMainSlot(context.Background(), &slot, 619, []string{"Viande"}); err != nil {
		t.Fatalf("fillMainSlot returned unexpected error: %v", err)
	}

	wantQueries := []DishQuery{
		{Category: DishMain, MealType: "Déjeuner", MaxCalories: 557, ExcludedTags: []string{"Viande"}},
		// Remaining 169 after the 450 kcal main, starter capped at 60%.
		{Category: DishStarter, MealType: "Déjeuner", MaxCalories: 101, ExcludedTags: []string{"Viande"}},
		// Remaining 79 after the 90 kcal starter.
		{Category: DishDessert, MealType: "Déjeuner", MaxCalories: 79, ExcludedTags: []string{"Viande"}},
	}
	if diff := cmp.Diff(wantQueries, catalog.queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, link := range slot.Dishes {
		names = append(names, link.Name)
	}
	if diff := cmp.Diff([]string{"Entrée", "Plat", "Dessert"}, names); diff != "" {
		t.Errorf("dish order mismatch (-want +got):\n%s", diff)
	}
}

func TestNutritionAssemblerSnackFallbacks(t *testing.T) {
	t.Parallel()

	// Nothing fits the budget or the exclusions; only the final
	// unconstrained lookup succeeds.
	catalog := &fakeDishCatalog{find: func(q DishQuery) *Dish {
		if q.MaxCalories > 0 || len(q.ExcludedTags) > 0 {
			return nil
		}
		return &Dish{ID: 9, Name: "Dessert libre", Category: DishDessert, Calories: 400}
	}}
	assembler := newNutritionAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	var slot MealSlot
	slot.MealType = "Collation"
	if err := assembler.fillSnackSlot(context.Background(), &slot, 619, []string{"Viande"}); err != nil {
		t.Fatalf("fillSnackSlot returned unexpected error: %v", err)
	}

	wantQueries := []DishQuery{
		{Category: DishDessert, MealType: "Collation", MaxCalories: 619, ExcludedTags: []string{"Viande"}},
		{Category: DishDessert, MealType: "Collation", ExcludedTags: []string{"Viande"}},
		{Category: DishDessert, MealType: "Collation"},
	}
	if diff := cmp.Diff(wantQueries, catalog.queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}
	if len(slot.Dishes) != 1 || slot.Dishes[0].Name != "Dessert libre" {
		t.Errorf("slot dishes = %v, want the unconstrained dessert", slot.Dishes)
	}
}

func TestNutritionAssemblerMainFallbackKeepsExclusions(t *testing.T) {
	t.Parallel()

	catalog := &fakeDishCatalog{find: func(q DishQuery) *Dish {
		if q.Category != DishMain {
			return nil
		}
		if q.MaxCalories > 0 {
			return nil
		}
		return &Dish{ID: 4, Name: "Plat copieux", Category: DishMain, Calories: 800}
	}}
	assembler := newNutritionAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	var slot MealSlot
	slot.MealType = "Dîner"
	if err := assembler.fillMainSlot(context.Background(), &slot, 619, []string{"Viande"}); err != nil {
		t.Fatalf("fillMainSlot returned unexpected error: %v", err)
	}

	if len(catalog.queries) < 2 {
		t.Fatalf("got %d queries, want at least 2", len(catalog.queries))
	}
	fallback := catalog.queries[1]
	if fallback.MaxCalories != 0 {
		t.Errorf("fallback MaxCalories = %d, want 0", fallback.MaxCalories)
	}
	if diff := cmp.Diff([]string{"Viande"}, fallback.ExcludedTags); diff != "" {
		t.Errorf("fallback exclusions mismatch (-want +got):\n%s", diff)
	}
	if len(slot.Dishes) != 1 || slot.Dishes[0].Name != "Plat copieux" {
		t.Errorf("slot dishes = %v, want the uncapped main", slot.Dishes)
	}
}

func TestNutritionAssemblerEmptySlotNote(t *testing.T) {
	t.Parallel()

	catalog := &fakeDishCatalog{}
	assembler := newNutritionAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	sub, err := assembler.Assemble(context.Background(), threeDayObjective(), testNutritionParams())
	if err != nil {
		t.Fatalf("Assemble returned unexpected error: %v", err)
	}

	for _, slot := range sub.Slots {
		if len(slot.Dishes) != 0 {
			t.Errorf("slot %s has dishes, want none", slot.MealType)
		}
		if slot.Note == "" {
			t.Errorf("slot %s has no note", slot.MealType)
		}
	}
}
