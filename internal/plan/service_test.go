package plan_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mlefevre/fitplan/internal/plan"
	"github.com/mlefevre/fitplan/internal/sqlite"
	"github.com/mlefevre/fitplan/internal/testhelpers"
)

func newTestService(t *testing.T) *plan.Service {
	t.Helper()

	ctx := context.Background()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("create test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close database: %v", closeErr)
		}
	})

	return plan.NewService(db, logger)
}

// Profile 1 from the fixtures: 30-year-old male, beginner, no equipment,
// three days a week, weight-loss objective over eight weeks.
func TestServiceGeneratePlan(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	ctx := context.Background()

	program, err := service.GeneratePlan(ctx, 1)
	if err != nil {
		t.Fatalf("GeneratePlan returned unexpected error: %v", err)
	}

	if program.PublicID == "" {
		t.Error("program has no public ID")
	}
	wantStart := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	if !program.Start.Equal(wantStart) || !program.End.Equal(wantEnd) {
		t.Errorf("program range %s..%s, want %s..%s",
			program.Start.Format(time.DateOnly), program.End.Format(time.DateOnly),
			wantStart.Format(time.DateOnly), wantEnd.Format(time.DateOnly))
	}

	// Three sessions a week over eight full weeks.
	if len(program.Training.Sessions) != 24 {
		t.Errorf("got %d sessions, want 24", len(program.Training.Sessions))
	}
	perWeek := map[int]int{}
	for _, session := range program.Training.Sessions {
		if session.Date.Before(wantStart) || session.Date.After(wantEnd) {
			t.Errorf("session date %s outside objective range", session.Date.Format(time.DateOnly))
		}
		year, week := session.Date.ISOWeek()
		perWeek[year*100+week]++
		if len(session.Exercises) == 0 {
			t.Errorf("session %s has no exercises", session.Date.Format(time.DateOnly))
		}
		if session.DurationMinutes <= 0 {
			t.Errorf("session %s has duration %d, want positive", session.Date.Format(time.DateOnly), session.DurationMinutes)
		}
		if session.Completed {
			t.Errorf("session %s marked completed at creation", session.Date.Format(time.DateOnly))
		}
	}
	for week, count := range perWeek {
		if count > 3 {
			t.Errorf("week %d has %d sessions, want at most 3", week, count)
		}
	}

	// Four meal slots for each of the 56 days.
	if len(program.Nutrition.Slots) != 224 {
		t.Errorf("got %d meal slots, want 224", len(program.Nutrition.Slots))
	}
	for _, slot := range program.Nutrition.Slots {
		if len(slot.Dishes) == 0 {
			t.Errorf("slot %s %s is empty", slot.Date.Format(time.DateOnly), slot.MealType)
		}
	}

	// The persisted aggregate loads back with the same shape.
	loaded, err := service.GetProgram(ctx, program.PublicID)
	if err != nil {
		t.Fatalf("GetProgram returned unexpected error: %v", err)
	}
	if loaded.PublicID != program.PublicID {
		t.Errorf("loaded public ID %q, want %q", loaded.PublicID, program.PublicID)
	}
	if len(loaded.Training.Sessions) != len(program.Training.Sessions) {
		t.Errorf("loaded %d sessions, want %d", len(loaded.Training.Sessions), len(program.Training.Sessions))
	}
	if len(loaded.Nutrition.Slots) != len(program.Nutrition.Slots) {
		t.Errorf("loaded %d slots, want %d", len(loaded.Nutrition.Slots), len(program.Nutrition.Slots))
	}
}

func TestServiceGeneratePlanUnknownProfile(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	_, err := service.GeneratePlan(context.Background(), 999)
	if !errors.Is(err, plan.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// Profile 2 from the fixtures: advanced female, gym access, seven days a
// week, hypertension and back pain, muscle-gain objective.
func TestServiceGenerateTrainingPlan(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	training, err := service.GenerateTrainingPlan(context.Background(), 2)
	if err != nil {
		t.Fatalf("GenerateTrainingPlan returned unexpected error: %v", err)
	}

	// Seven sessions a week over eight weeks.
	if len(training.Sessions) != 56 {
		t.Fatalf("got %d sessions, want 56", len(training.Sessions))
	}

	// The five-way split's back day is fully excluded by the back pain
	// rule, so every fifth session starting from the second is medical
	// rest.
	restCount := 0
	for i, session := range training.Sessions {
		if i%5 == 1 {
			if session.Name != "Repos médical" {
				t.Errorf("session %d name %q, want medical rest", i, session.Name)
			}
			if session.DurationMinutes != 0 || len(session.Exercises) != 0 {
				t.Errorf("session %d is not an empty rest placeholder", i)
			}
			restCount++
			continue
		}
		if strings.Contains(session.Name, "Dos") || strings.Contains(session.Name, "Lombaires") {
			t.Errorf("session %d targets an excluded muscle: %s", i, session.Name)
		}
		for _, link := range session.Exercises {
			// Advanced muscle gain 5x6x120 shifted by the cardio risk
			// adjustment -1/-2/+60.
			if link.Sets != 4 || link.Reps != 4 || link.RestSeconds != 180 {
				t.Errorf("session %d volume = %d/%d/%d, want 4/4/180",
					i, link.Sets, link.Reps, link.RestSeconds)
			}
		}
	}
	if restCount != 11 {
		t.Errorf("got %d medical rest sessions, want 11", restCount)
	}
}

func TestServiceGenerateNutritionPlan(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	nutrition, err := service.GenerateNutritionPlan(context.Background(), 2)
	if err != nil {
		t.Fatalf("GenerateNutritionPlan returned unexpected error: %v", err)
	}

	// Five meal slots for each of the 56 days of the muscle-gain
	// template.
	if len(nutrition.Slots) != 280 {
		t.Fatalf("got %d slots, want 280", len(nutrition.Slots))
	}

	// Vegetarian diet with lactose restriction: no meat, fish or dairy
	// dishes anywhere.
	forbidden := map[string]bool{
		"Poulet rôti et légumes":     true,
		"Saumon grillé, riz complet": true,
		"Pâtes bolognaise":           true,
		"Salade de chèvre chaud":     true,
		"Gratin de légumes":          true,
		"Yaourt nature":              true,
	}
	for _, slot := range nutrition.Slots {
		if len(slot.Dishes) == 0 {
			t.Errorf("slot %s %s is empty", slot.Date.Format(time.DateOnly), slot.MealType)
		}
		for _, dish := range slot.Dishes {
			if forbidden[dish.Name] {
				t.Errorf("slot %s %s contains excluded dish %q",
					slot.Date.Format(time.DateOnly), slot.MealType, dish.Name)
			}
		}
	}
}

func TestServiceGetExercise(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	ctx := context.Background()

	exercise, err := service.GetExercise(ctx, 1)
	if err != nil {
		t.Fatalf("GetExercise returned unexpected error: %v", err)
	}
	if exercise.Name != "Pompes" {
		t.Errorf("exercise name = %q, want Pompes", exercise.Name)
	}
	if exercise.Muscle != "Pectoraux" {
		t.Errorf("exercise muscle = %q, want Pectoraux", exercise.Muscle)
	}
	if !strings.Contains(exercise.DescriptionMarkdown, "Pompes") {
		t.Errorf("description %q does not mention the exercise", exercise.DescriptionMarkdown)
	}

	if _, err = service.GetExercise(ctx, 9999); !errors.Is(err, plan.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceGetProgramUnknownID(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	_, err := service.GetProgram(context.Background(), "no-such-program")
	if !errors.Is(err, plan.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
