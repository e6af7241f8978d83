package plan

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mlefevre/fitplan/internal/testhelpers"
)

// fakeExerciseCatalog records queries and answers them via find.
type fakeExerciseCatalog struct {
	queries []ExerciseQuery
	find    func(q ExerciseQuery) *Exercise
}

func (f *fakeExerciseCatalog) FindCompatibleExercise(_ context.Context, q ExerciseQuery) (*Exercise, error) {
	f.queries = append(f.queries, q)
	if f.find == nil {
		return nil, nil
	}
	return f.find(q), nil
}

func staticExercises() func(q ExerciseQuery) *Exercise {
	nextID := 0
	return func(q ExerciseQuery) *Exercise {
		nextID++
		return &Exercise{ID: nextID, Name: "Exercice " + q.Muscle, Muscle: q.Muscle}
	}
}

func testTrainingParams() TrainingParameters {
	return TrainingParameters{
		Split:  splitPushPullLegs,
		Volume: Volume{Sets: 3, Reps: 12, RestSeconds: 75},
	}
}

func testProfile() Profile {
	return Profile{
		ID:              1,
		Level:           LevelBeginner,
		WeeklyFrequency: 3,
		AvailableDays:   []string{"Lundi", "Mercredi", "Vendredi"},
		PreferredTime:   "18:00",
		Equipment:       []string{"Gym"},
	}
}

func TestTrainingAssemblerSchedule(t *testing.T) {
	t.Parallel()

	catalog := &fakeExerciseCatalog{find: staticExercises()}
	assembler := newTrainingAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	// Two full weeks starting on a Monday.
	objective := Objective{
		Category: ObjectiveWeightLoss,
		Start:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC),
	}

	sub, err := assembler.Assemble(context.Background(), testProfile(), objective, testTrainingParams())
	if err != nil {
		t.Fatalf("Assemble returned unexpected error: %v", err)
	}

	wantDates := []time.Time{
		time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC),
	}
	var gotDates []time.Time
	for _, session := range sub.Sessions {
		gotDates = append(gotDates, session.Date)
		if session.Date.After(objective.End) {
			t.Errorf("session date %s is after objective end", session.Date.Format(time.DateOnly))
		}
		if session.Time != "18:00" {
			t.Errorf("session time = %q, want 18:00", session.Time)
		}
	}
	if diff := cmp.Diff(wantDates, gotDates); diff != "" {
		t.Errorf("session dates mismatch (-want +got):\n%s", diff)
	}

	// The split template cycles with a global counter: sessions 0 and 3
	// target the same muscles.
	if sub.Sessions[0].Name != sub.Sessions[3].Name {
		t.Errorf("sessions 0 and 3 differ: %q vs %q", sub.Sessions[0].Name, sub.Sessions[3].Name)
	}
	if sub.Sessions[0].Name == sub.Sessions[1].Name {
		t.Errorf("sessions 0 and 1 should target different muscles, both %q", sub.Sessions[0].Name)
	}

	// One exercise per template muscle, carrying the resolved volume.
	if len(sub.Sessions[0].Exercises) != len(splitPushPullLegs.Template[0]) {
		t.Errorf("session 0 has %d exercises, want %d",
			len(sub.Sessions[0].Exercises), len(splitPushPullLegs.Template[0]))
	}
	for _, link := range sub.Sessions[0].Exercises {
		if link.Sets != 3 || link.Reps != 12 || link.RestSeconds != 75 {
			t.Errorf("exercise link volume = %d/%d/%d, want 3/12/75", link.Sets, link.Reps, link.RestSeconds)
		}
	}
}

func TestTrainingAssemblerTruncatesToFrequency(t *testing.T) {
	t.Parallel()

	catalog := &fakeExerciseCatalog{find: staticExercises()}
	assembler := newTrainingAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	profile := testProfile()
	profile.WeeklyFrequency = 2
	profile.AvailableDays = []string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}

	objective := Objective{
		Category: ObjectiveWeightLoss,
		Start:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
	}

	sub, err := assembler.Assemble(context.Background(), profile, objective, testTrainingParams())
	if err != nil {
		t.Fatalf("Assemble returned unexpected error: %v", err)
	}

	// Earliest two weekdays win: Lundi and Mardi.
	if len(sub.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sub.Sessions))
	}
	if got := sub.Sessions[0].Date.Weekday(); got != time.Monday {
		t.Errorf("first session on %s, want Monday", got)
	}
	if got := sub.Sessions[1].Date.Weekday(); got != time.Tuesday {
		t.Errorf("second session on %s, want Tuesday", got)
	}
}

func TestTrainingAssemblerMedicalRest(t *testing.T) {
	t.Parallel()

	catalog := &fakeExerciseCatalog{find: staticExercises()}
	assembler := newTrainingAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	params := TrainingParameters{
		Split: SplitPlan{
			ID:       "test",
			Name:     "Test",
			Template: [][]string{{"Dos", "Lombaires"}},
		},
		Volume:          Volume{Sets: 3, Reps: 12, RestSeconds: 75},
		ExcludedMuscles: []string{"Dos", "Lombaires"},
	}

	objective := Objective{
		Category: ObjectiveWeightLoss,
		Start:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
	}

	sub, err := assembler.Assemble(context.Background(), testProfile(), objective, params)
	if err != nil {
		t.Fatalf("Assemble returned unexpected error: %v", err)
	}

	if len(sub.Sessions) == 0 {
		t.Fatal("expected sessions, got none")
	}
	for _, session := range sub.Sessions {
		if session.Name != medicalRestName {
			t.Errorf("session name = %q, want %q", session.Name, medicalRestName)
		}
		if session.DurationMinutes != 0 {
			t.Errorf("medical rest duration = %d, want 0", session.DurationMinutes)
		}
		if len(session.Exercises) != 0 {
			t.Errorf("medical rest has %d exercises, want 0", len(session.Exercises))
		}
		if session.Note == "" {
			t.Error("medical rest note is empty")
		}
	}
	if len(catalog.queries) != 0 {
		t.Errorf("catalog queried %d times for fully excluded sessions", len(catalog.queries))
	}
}

func TestTrainingAssemblerExcludesSameSessionExercises(t *testing.T) {
	t.Parallel()

	catalog := &fakeExerciseCatalog{find: staticExercises()}
	assembler := newTrainingAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	profile := testProfile()
	profile.WeeklyFrequency = 1
	profile.AvailableDays = []string{"Lundi"}

	objective := Objective{
		Category: ObjectiveWeightLoss,
		Start:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
	}

	if _, err := assembler.Assemble(context.Background(), profile, objective, testTrainingParams()); err != nil {
		t.Fatalf("Assemble returned unexpected error: %v", err)
	}

	if len(catalog.queries) != 3 {
		t.Fatalf("got %d queries, want 3", len(catalog.queries))
	}
	if len(catalog.queries[0].ExcludeIDs) != 0 {
		t.Errorf("first query excludes %v, want none", catalog.queries[0].ExcludeIDs)
	}
	if diff := cmp.Diff([]int{1}, catalog.queries[1].ExcludeIDs); diff != "" {
		t.Errorf("second query exclusions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, catalog.queries[2].ExcludeIDs); diff != "" {
		t.Errorf("third query exclusions mismatch (-want +got):\n%s", diff)
	}
}

func TestTrainingAssemblerSkipsMuscleWithoutMatch(t *testing.T) {
	t.Parallel()

	catalog := &fakeExerciseCatalog{find: func(q ExerciseQuery) *Exercise {
		if q.Muscle == "Épaules" {
			return nil
		}
		return &Exercise{ID: 1 + len(q.ExcludeIDs), Name: "Exercice " + q.Muscle, Muscle: q.Muscle}
	}}
	assembler := newTrainingAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	profile := testProfile()
	profile.WeeklyFrequency = 1
	profile.AvailableDays = []string{"Lundi"}

	objective := Objective{
		Category: ObjectiveWeightLoss,
		Start:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
	}

	sub, err := assembler.Assemble(context.Background(), profile, objective, testTrainingParams())
	if err != nil {
		t.Fatalf("Assemble returned unexpected error: %v", err)
	}

	// Push day is Pectoraux/Épaules/Triceps; Épaules has no match and is
	// silently skipped.
	if len(sub.Sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sub.Sessions))
	}
	if len(sub.Sessions[0].Exercises) != 2 {
		t.Errorf("got %d exercises, want 2", len(sub.Sessions[0].Exercises))
	}
}

func TestTrainingAssemblerRejectsEmptyWeekdays(t *testing.T) {
	t.Parallel()

	catalog := &fakeExerciseCatalog{find: staticExercises()}
	assembler := newTrainingAssembler(catalog, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	profile := testProfile()
	profile.AvailableDays = []string{"Noday"}

	objective := Objective{
		Category: ObjectiveWeightLoss,
		Start:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
	}

	if _, err := assembler.Assemble(context.Background(), profile, objective, testTrainingParams()); err == nil {
		t.Fatal("expected error for empty weekday list, got nil")
	}
}
