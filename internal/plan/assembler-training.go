package plan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// ExerciseQuery describes one catalog lookup made by the training assembler.
type ExerciseQuery struct {
	Muscle string
	// Levels lists the difficulties the profile can handle.
	Levels []Level
	// Equipment is the expanded tag set the profile owns; a matching
	// exercise must require a subset of it.
	Equipment []string
	// ExcludeIDs are exercises already placed in the same session.
	ExcludeIDs []int
}

// exerciseCatalog picks a uniformly random exercise matching the query, or
// nil when none matches.
type exerciseCatalog interface {
	FindCompatibleExercise(ctx context.Context, q ExerciseQuery) (*Exercise, error)
}

// weekdayIndexes maps French weekday names to a Monday-based index.
var weekdayIndexes = map[string]int{
	"Lundi":    0,
	"Mardi":    1,
	"Mercredi": 2,
	"Jeudi":    3,
	"Vendredi": 4,
	"Samedi":   5,
	"Dimanche": 6,
}

// medicalRestName labels sessions whose whole muscle template is excluded by
// health rules.
const medicalRestName = "Repos médical"

// compatibleLevels returns the exercise difficulties a profile level can
// train. Higher levels include everything below them.
func compatibleLevels(level Level) []Level {
	switch level {
	case LevelAdvanced:
		return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
	case LevelIntermediate:
		return []Level{LevelBeginner, LevelIntermediate}
	default:
		return []Level{LevelBeginner}
	}
}

type trainingAssembler struct {
	catalog exerciseCatalog
	logger  *slog.Logger
}

func newTrainingAssembler(catalog exerciseCatalog, logger *slog.Logger) *trainingAssembler {
	return &trainingAssembler{catalog: catalog, logger: logger}
}

// Assemble produces the dated training sub-program for a profile and
// objective. Weekdays outside the profile's frequency are dropped, the split
// template is cycled with a global session counter, and dates past the
// objective end are skipped.
func (a *trainingAssembler) Assemble(
	ctx context.Context,
	profile Profile,
	objective Objective,
	params TrainingParameters,
) (TrainingSubProgram, error) {
	days, err := scheduleDays(profile.AvailableDays, profile.WeeklyFrequency)
	if err != nil {
		return TrainingSubProgram{}, err
	}

	weeks := (objective.DurationDays() + 6) / 7
	startIndex := mondayIndex(objective.Start.Weekday())
	levels := compatibleLevels(profile.Level)
	equipment := expandEquipment(profile.Equipment)

	sub := TrainingSubProgram{
		Name:        params.Split.Name,
		Description: params.Split.Description,
	}

	counter := 0
	for week := 0; week < weeks; week++ {
		for _, day := range days {
			date := objective.Start.AddDate(0, 0, (day-startIndex+7)%7+7*week)
			if date.After(objective.End) {
				continue
			}

			muscles := withoutExcluded(params.Split.Template[counter%len(params.Split.Template)], params.ExcludedMuscles)
			counter++

			if len(muscles) == 0 {
				sub.Sessions = append(sub.Sessions, Session{
					Date:            date,
					Time:            profile.PreferredTime,
					Name:            medicalRestName,
					Note:            "Séance remplacée par du repos en raison de vos conditions physiques.",
					DurationMinutes: 0,
				})
				continue
			}

			session, sessionErr := a.buildSession(ctx, date, profile.PreferredTime, muscles, levels, equipment, params.Volume)
			if sessionErr != nil {
				return TrainingSubProgram{}, fmt.Errorf("build session %s: %w", date.Format(time.DateOnly), sessionErr)
			}
			sub.Sessions = append(sub.Sessions, session)
		}
	}

	return sub, nil
}

func (a *trainingAssembler) buildSession(
	ctx context.Context,
	date time.Time,
	timeOfDay string,
	muscles []string,
	levels []Level,
	equipment []string,
	volume Volume,
) (Session, error) {
	session := Session{
		Date: date,
		Time: timeOfDay,
		Name: "Séance " + strings.Join(muscles, " / "),
	}

	var usedIDs []int
	for _, muscle := range muscles {
		exercise, err := a.catalog.FindCompatibleExercise(ctx, ExerciseQuery{
			Muscle:     muscle,
			Levels:     levels,
			Equipment:  equipment,
			ExcludeIDs: usedIDs,
		})
		if err != nil {
			return Session{}, fmt.Errorf("find exercise for %s: %w", muscle, err)
		}
		if exercise == nil {
			// Missing catalog content degrades locally.
			a.logger.LogAttrs(ctx, slog.LevelDebug, "no compatible exercise",
				slog.String("muscle", muscle),
				slog.String("date", date.Format(time.DateOnly)))
			continue
		}
		usedIDs = append(usedIDs, exercise.ID)
		session.Exercises = append(session.Exercises, ExerciseLink{
			ExerciseID:  exercise.ID,
			Name:        exercise.Name,
			Reps:        volume.Reps,
			Sets:        volume.Sets,
			RestSeconds: volume.RestSeconds,
		})
	}

	session.DurationMinutes = estimateDuration(volume, len(session.Exercises))
	return session, nil
}

// secondsPerSet approximates the working time of one set before rest.
const secondsPerSet = 40

// warmupSeconds is a flat warm-up allowance per session.
const warmupSeconds = 600

// estimateDuration converts the prescription into session minutes.
func estimateDuration(volume Volume, exerciseCount int) int {
	if exerciseCount == 0 {
		return 0
	}
	seconds := warmupSeconds + exerciseCount*volume.Sets*(secondsPerSet+volume.RestSeconds)
	return (seconds + 59) / 60
}

// scheduleDays converts French weekday names to sorted Monday-based indexes
// truncated to the weekly frequency. An empty result is fatal.
func scheduleDays(availableDays []string, frequency int) ([]int, error) {
	var days []int
	for _, name := range availableDays {
		index, ok := weekdayIndexes[strings.TrimSpace(name)]
		if !ok {
			continue
		}
		days = append(days, index)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no usable training days in %v", availableDays)
	}
	sort.Ints(days)
	if frequency > 0 && len(days) > frequency {
		days = days[:frequency]
	}
	return days, nil
}

// mondayIndex converts time.Weekday (Sunday-based) to the Monday-based index
// the schedule uses.
func mondayIndex(weekday time.Weekday) int {
	return (int(weekday) + 6) % 7
}

func withoutExcluded(muscles, excluded []string) []string {
	if len(excluded) == 0 {
		return muscles
	}
	kept := make([]string, 0, len(muscles))
	for _, muscle := range muscles {
		skip := false
		for _, ex := range excluded {
			if muscle == ex {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, muscle)
		}
	}
	return kept
}
