package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mlefevre/fitplan/internal/sqlite"
)

// sqliteCatalogRepository implements catalogRepository.
type sqliteCatalogRepository struct {
	baseRepository
}

func newSQLiteCatalogRepository(db *sqlite.Database, logger *slog.Logger) *sqliteCatalogRepository {
	return &sqliteCatalogRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// placeholders returns "?, ?, ..." for n parameters.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// FindCompatibleExercise picks a uniformly random exercise matching the
// query. A nil result without error means nothing matched.
func (r *sqliteCatalogRepository) FindCompatibleExercise(ctx context.Context, q ExerciseQuery) (*Exercise, error) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`
		SELECT e.id, e.name, e.muscle, e.level, e.description_markdown
		FROM exercises e
		WHERE e.muscle = ?`)
	args = append(args, q.Muscle)

	if len(q.Levels) > 0 {
		sb.WriteString(fmt.Sprintf(" AND e.level IN (%s)", placeholders(len(q.Levels))))
		for _, level := range q.Levels {
			args = append(args, string(level))
		}
	}

	if len(q.ExcludeIDs) > 0 {
		sb.WriteString(fmt.Sprintf(" AND e.id NOT IN (%s)", placeholders(len(q.ExcludeIDs))))
		for _, id := range q.ExcludeIDs {
			args = append(args, id)
		}
	}

	// Equipment containment: every tag the exercise requires must be owned.
	if len(q.Equipment) > 0 {
		sb.WriteString(fmt.Sprintf(`
			AND NOT EXISTS (
				SELECT 1 FROM exercise_equipment ee
				WHERE ee.exercise_id = e.id AND ee.tag NOT IN (%s)
			)`, placeholders(len(q.Equipment))))
		for _, tag := range q.Equipment {
			args = append(args, tag)
		}
	} else {
		sb.WriteString(`
			AND NOT EXISTS (
				SELECT 1 FROM exercise_equipment ee
				WHERE ee.exercise_id = e.id
			)`)
	}

	sb.WriteString(" ORDER BY RANDOM() LIMIT 1")

	var exercise Exercise
	err := r.db.ReadOnly.QueryRowContext(ctx, sb.String(), args...).Scan(
		&exercise.ID,
		&exercise.Name,
		&exercise.Muscle,
		&exercise.Level,
		&exercise.DescriptionMarkdown,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no match is a non-fatal outcome for the assembler.
	}
	if err != nil {
		return nil, fmt.Errorf("query compatible exercise: %w", err)
	}
	return &exercise, nil
}

// FindCompatibleDish picks a uniformly random dish matching the query. A nil
// result without error means nothing matched.
func (r *sqliteCatalogRepository) FindCompatibleDish(ctx context.Context, q DishQuery) (*Dish, error) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`
		SELECT d.id, d.name, d.category, d.calories, d.description_markdown
		FROM dishes d
		WHERE d.category = ?`)
	args = append(args, string(q.Category))

	sb.WriteString(" AND (? <= 0 OR d.calories <= ?)")
	args = append(args, q.MaxCalories, q.MaxCalories)

	if len(q.ExcludedTags) > 0 {
		sb.WriteString(fmt.Sprintf(`
			AND NOT EXISTS (
				SELECT 1 FROM dish_tags dt
				WHERE dt.dish_id = d.id AND dt.tag IN (%s)
			)`, placeholders(len(q.ExcludedTags))))
		for _, tag := range q.ExcludedTags {
			args = append(args, tag)
		}
	}

	// Dishes without meal type rows fit any slot.
	sb.WriteString(`
		AND (
			NOT EXISTS (SELECT 1 FROM dish_meal_types dm WHERE dm.dish_id = d.id)
			OR EXISTS (SELECT 1 FROM dish_meal_types dm WHERE dm.dish_id = d.id AND dm.meal_type = ?)
		)`)
	args = append(args, q.MealType)

	sb.WriteString(" ORDER BY RANDOM() LIMIT 1")

	var dish Dish
	err := r.db.ReadOnly.QueryRowContext(ctx, sb.String(), args...).Scan(
		&dish.ID,
		&dish.Name,
		&dish.Category,
		&dish.Calories,
		&dish.DescriptionMarkdown,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no match is a non-fatal outcome for the assembler.
	}
	if err != nil {
		return nil, fmt.Errorf("query compatible dish: %w", err)
	}
	return &dish, nil
}

// GetExercise retrieves a single exercise by ID with its equipment tags.
func (r *sqliteCatalogRepository) GetExercise(ctx context.Context, id int) (Exercise, error) {
	var exercise Exercise
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, muscle, level, description_markdown
		FROM exercises
		WHERE id = ?`, id).Scan(
		&exercise.ID,
		&exercise.Name,
		&exercise.Muscle,
		&exercise.Level,
		&exercise.DescriptionMarkdown,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}

	if exercise.Equipment, err = r.fetchExerciseEquipment(ctx, id); err != nil {
		return Exercise{}, fmt.Errorf("fetch exercise equipment: %w", err)
	}
	return exercise, nil
}

func (r *sqliteCatalogRepository) fetchExerciseEquipment(ctx context.Context, exerciseID int) (_ []string, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT tag
		FROM exercise_equipment
		WHERE exercise_id = ?
		ORDER BY tag`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("query exercise equipment: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var tags []string
	for rows.Next() {
		var tag string
		if err = rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan equipment tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment tags: %w", err)
	}
	return tags, nil
}
