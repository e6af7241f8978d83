package plan

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// DishQuery describes one catalog lookup made by the nutrition assembler. A
// MaxCalories of zero or less means no calorie cap.
type DishQuery struct {
	Category     DishCategory
	MealType     string
	MaxCalories  int
	ExcludedTags []string
}

// dishCatalog picks a uniformly random dish matching the query, or nil when
// none matches.
type dishCatalog interface {
	FindCompatibleDish(ctx context.Context, q DishQuery) (*Dish, error)
}

// mainDishBudgetShare caps the main dish so starters and desserts keep room.
const mainDishBudgetShare = 0.9

// starterRemainingShare caps the starter relative to what the main left over.
const starterRemainingShare = 0.6

// minLeftoverCalories is the smallest remainder worth filling with another
// dish.
const minLeftoverCalories = 50

type nutritionAssembler struct {
	catalog dishCatalog
	logger  *slog.Logger
}

func newNutritionAssembler(catalog dishCatalog, logger *slog.Logger) *nutritionAssembler {
	return &nutritionAssembler{catalog: catalog, logger: logger}
}

// Assemble produces the dated nutrition sub-program: every day of the
// objective gets the resolved meal template, each slot filled greedily within
// its share of the daily calorie budget.
func (a *nutritionAssembler) Assemble(
	ctx context.Context,
	objective Objective,
	params NutritionParameters,
) (NutritionSubProgram, error) {
	if len(params.MealTemplate) == 0 {
		return NutritionSubProgram{}, fmt.Errorf("empty meal template for objective %d", objective.ID)
	}
	budget := int(math.Round(float64(params.DailyCalories) / float64(len(params.MealTemplate))))

	sub := NutritionSubProgram{
		Name: fmt.Sprintf("Nutrition %s", objective.Category),
		Description: fmt.Sprintf("Objectif %d kcal par jour, %d repas.",
			params.DailyCalories, len(params.MealTemplate)),
	}

	for date := objective.Start; !date.After(objective.End); date = date.AddDate(0, 0, 1) {
		for _, tmpl := range params.MealTemplate {
			slot, err := a.buildSlot(ctx, date, tmpl, budget, params.ExcludedFoods)
			if err != nil {
				return NutritionSubProgram{}, fmt.Errorf("build slot %s %s: %w",
					date.Format(time.DateOnly), tmpl.Type, err)
			}
			sub.Slots = append(sub.Slots, slot)
		}
	}

	return sub, nil
}

func (a *nutritionAssembler) buildSlot(
	ctx context.Context,
	date time.Time,
	tmpl MealSlotTemplate,
	budget int,
	excluded []string,
) (MealSlot, error) {
	slot := MealSlot{
		Date:     date,
		Time:     tmpl.Time,
		MealType: tmpl.Type,
	}

	var err error
	if tmpl.Kind == slotMain {
		err = a.fillMainSlot(ctx, &slot, budget, excluded)
	} else {
		err = a.fillSnackSlot(ctx, &slot, budget, excluded)
	}
	if err != nil {
		return MealSlot{}, err
	}

	if len(slot.Dishes) == 0 {
		slot.Note = "Aucun plat compatible trouvé pour ce repas."
	}
	return slot, nil
}

// fillSnackSlot places a single light dish. When nothing fits the budget the
// cap is dropped first, then the exclusions.
func (a *nutritionAssembler) fillSnackSlot(ctx context.Context, slot *MealSlot, budget int, excluded []string) error {
	queries := []DishQuery{
		{Category: DishDessert, MealType: slot.MealType, MaxCalories: budget, ExcludedTags: excluded},
		{Category: DishDessert, MealType: slot.MealType, ExcludedTags: excluded},
		{Category: DishDessert, MealType: slot.MealType},
	}
	for _, q := range queries {
		dish, err := a.catalog.FindCompatibleDish(ctx, q)
		if err != nil {
			return fmt.Errorf("find snack dish: %w", err)
		}
		if dish != nil {
			appendDish(slot, dish)
			return nil
		}
	}
	a.logger.LogAttrs(ctx, slog.LevelDebug, "no dish for snack slot",
		slog.String("mealType", slot.MealType))
	return nil
}

// fillMainSlot places a main dish and, budget permitting, a starter and a
// dessert. The fallback for an empty slot lifts the calorie cap but keeps the
// exclusions.
func (a *nutritionAssembler) fillMainSlot(ctx context.Context, slot *MealSlot, budget int, excluded []string) error {
	mainCap := int(math.Round(mainDishBudgetShare * float64(budget)))
	main, err := a.catalog.FindCompatibleDish(ctx, DishQuery{
		Category:     DishMain,
		MealType:     slot.MealType,
		MaxCalories:  mainCap,
		ExcludedTags: excluded,
	})
	if err != nil {
		return fmt.Errorf("find main dish: %w", err)
	}
	if main == nil {
		main, err = a.catalog.FindCompatibleDish(ctx, DishQuery{
			Category:     DishMain,
			MealType:     slot.MealType,
			ExcludedTags: excluded,
		})
		if err != nil {
			return fmt.Errorf("find uncapped main dish: %w", err)
		}
	}
	if main == nil {
		a.logger.LogAttrs(ctx, slog.LevelDebug, "no dish for main slot",
			slog.String("mealType", slot.MealType))
		return nil
	}

	remaining := budget - main.Calories

	var starter *Dish
	if remaining > minLeftoverCalories {
		starter, err = a.catalog.FindCompatibleDish(ctx, DishQuery{
			Category:     DishStarter,
			MealType:     slot.MealType,
			MaxCalories:  int(math.Round(starterRemainingShare * float64(remaining))),
			ExcludedTags: excluded,
		})
		if err != nil {
			return fmt.Errorf("find starter dish: %w", err)
		}
		if starter != nil {
			remaining -= starter.Calories
		}
	}

	var dessert *Dish
	if remaining > minLeftoverCalories {
		dessert, err = a.catalog.FindCompatibleDish(ctx, DishQuery{
			Category:     DishDessert,
			MealType:     slot.MealType,
			MaxCalories:  remaining,
			ExcludedTags: excluded,
		})
		if err != nil {
			return fmt.Errorf("find dessert dish: %w", err)
		}
	}

	// Serving order: starter, main, dessert.
	if starter != nil {
		appendDish(slot, starter)
	}
	appendDish(slot, main)
	if dessert != nil {
		appendDish(slot, dessert)
	}
	return nil
}

func appendDish(slot *MealSlot, dish *Dish) {
	slot.Dishes = append(slot.Dishes, DishLink{
		DishID:   dish.ID,
		Name:     dish.Name,
		Calories: dish.Calories,
		Quantity: 1,
	})
}
