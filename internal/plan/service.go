// Package plan generates personalized training and nutrition programs. Rule
// trees resolve a profile into parameters, greedy assemblers turn the
// parameters into dated sessions and meals from the catalog.
package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mlefevre/fitplan/internal/sqlite"
)

// Service handles the business logic for plan generation.
type Service struct {
	repo      *repository
	training  *trainingAssembler
	nutrition *nutritionAssembler
	logger    *slog.Logger
}

// NewService creates a new plan service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	factory := newRepositoryFactory(db, logger)
	repo := factory.newRepository()
	return &Service{
		repo:      repo,
		training:  newTrainingAssembler(repo.catalog, logger),
		nutrition: newNutritionAssembler(repo.catalog, logger),
		logger:    logger,
	}
}

// generationInputs loads the profile and its current objective. Both missing
// cases are fatal for a generation run.
func (s *Service) generationInputs(ctx context.Context, profileID int) (Profile, Objective, error) {
	profile, err := s.repo.profiles.Get(ctx, profileID)
	if err != nil {
		return Profile{}, Objective{}, fmt.Errorf("get profile %d: %w", profileID, err)
	}
	objective, err := s.repo.profiles.CurrentObjective(ctx, profileID)
	if err != nil {
		return Profile{}, Objective{}, fmt.Errorf("get objective for profile %d: %w", profileID, err)
	}
	return profile, objective, nil
}

// GeneratePlan generates and persists a complete program for a profile. The
// aggregate is stored in one transaction so a write failure leaves nothing
// behind.
func (s *Service) GeneratePlan(ctx context.Context, profileID int) (Program, error) {
	profile, objective, err := s.generationInputs(ctx, profileID)
	if err != nil {
		return Program{}, err
	}

	start := time.Now()

	training, err := s.assembleTraining(ctx, profile, objective)
	if err != nil {
		return Program{}, fmt.Errorf("assemble training: %w", err)
	}

	nutrition, err := s.assembleNutrition(ctx, profile, objective)
	if err != nil {
		return Program{}, fmt.Errorf("assemble nutrition: %w", err)
	}

	program := Program{
		PublicID:    uuid.NewString(),
		Name:        fmt.Sprintf("Programme %s", objective.Category),
		Description: fmt.Sprintf("Plan personnalisé du %s au %s.", objective.Start.Format(dateFormat), objective.End.Format(dateFormat)),
		Start:       objective.Start,
		End:         objective.End,
		ProfileID:   profile.ID,
		Training:    training,
		Nutrition:   nutrition,
	}

	created, err := s.repo.programs.Create(ctx, program)
	if err != nil {
		return Program{}, fmt.Errorf("persist program: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "generated program",
		slog.String("publicID", created.PublicID),
		slog.Int("profileID", profile.ID),
		slog.Int("sessions", len(created.Training.Sessions)),
		slog.Int("mealSlots", len(created.Nutrition.Slots)),
		slog.Duration("duration", time.Since(start)))

	return created, nil
}

// GenerateTrainingPlan generates the training half on its own, without
// persisting it.
func (s *Service) GenerateTrainingPlan(ctx context.Context, profileID int) (TrainingSubProgram, error) {
	profile, objective, err := s.generationInputs(ctx, profileID)
	if err != nil {
		return TrainingSubProgram{}, err
	}
	return s.assembleTraining(ctx, profile, objective)
}

// GenerateNutritionPlan generates the nutrition half on its own, without
// persisting it.
func (s *Service) GenerateNutritionPlan(ctx context.Context, profileID int) (NutritionSubProgram, error) {
	profile, objective, err := s.generationInputs(ctx, profileID)
	if err != nil {
		return NutritionSubProgram{}, err
	}
	return s.assembleNutrition(ctx, profile, objective)
}

func (s *Service) assembleTraining(ctx context.Context, profile Profile, objective Objective) (TrainingSubProgram, error) {
	params, err := ResolveTrainingParameters(profile, objective)
	if err != nil {
		return TrainingSubProgram{}, fmt.Errorf("resolve training parameters: %w", err)
	}
	sub, err := s.training.Assemble(ctx, profile, objective, params)
	if err != nil {
		return TrainingSubProgram{}, fmt.Errorf("assemble training schedule: %w", err)
	}
	return sub, nil
}

func (s *Service) assembleNutrition(ctx context.Context, profile Profile, objective Objective) (NutritionSubProgram, error) {
	params, err := ResolveNutritionParameters(profile, objective)
	if err != nil {
		return NutritionSubProgram{}, fmt.Errorf("resolve nutrition parameters: %w", err)
	}
	sub, err := s.nutrition.Assemble(ctx, objective, params)
	if err != nil {
		return NutritionSubProgram{}, fmt.Errorf("assemble nutrition schedule: %w", err)
	}
	return sub, nil
}

// GetProgram retrieves a generated program by its public ID.
func (s *Service) GetProgram(ctx context.Context, publicID string) (Program, error) {
	program, err := s.repo.programs.Get(ctx, publicID)
	if err != nil {
		return Program{}, fmt.Errorf("get program %s: %w", publicID, err)
	}
	return program, nil
}

// GetExercise retrieves a catalog exercise by ID.
func (s *Service) GetExercise(ctx context.Context, id int) (Exercise, error) {
	exercise, err := s.repo.catalog.GetExercise(ctx, id)
	if err != nil {
		return Exercise{}, fmt.Errorf("get exercise %d: %w", id, err)
	}
	return exercise, nil
}
