package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mlefevre/fitplan/internal/sqlite"
)

// sqliteProfileRepository implements profileRepository.
type sqliteProfileRepository struct {
	baseRepository
}

func newSQLiteProfileRepository(db *sqlite.Database, logger *slog.Logger) *sqliteProfileRepository {
	return &sqliteProfileRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves a profile with its equipment, health and diet references
// resolved.
func (r *sqliteProfileRepository) Get(ctx context.Context, id int) (Profile, error) {
	var (
		profile       Profile
		availableDays string
		equipmentID   sql.NullInt64
		healthID      sql.NullInt64
		dietID        sql.NullInt64
	)

	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, age, weight_kg, height, sex, level, weekly_frequency,
		       available_days, preferred_time,
		       equipment_category_id, health_info_id, diet_regime_id
		FROM profiles
		WHERE id = ?`, id).Scan(
		&profile.ID,
		&profile.Age,
		&profile.WeightKg,
		&profile.Height,
		&profile.Sex,
		&profile.Level,
		&profile.WeeklyFrequency,
		&availableDays,
		&profile.PreferredTime,
		&equipmentID,
		&healthID,
		&dietID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}

	for _, day := range strings.Split(availableDays, ",") {
		if day = strings.TrimSpace(day); day != "" {
			profile.AvailableDays = append(profile.AvailableDays, day)
		}
	}

	if equipmentID.Valid {
		if profile.Equipment, err = r.fetchEquipmentTags(ctx, int(equipmentID.Int64)); err != nil {
			return Profile{}, fmt.Errorf("fetch equipment tags: %w", err)
		}
	}
	if healthID.Valid {
		if profile.Health, err = r.fetchHealthContext(ctx, int(healthID.Int64)); err != nil {
			return Profile{}, fmt.Errorf("fetch health context: %w", err)
		}
	}
	if dietID.Valid {
		if profile.Diet, err = r.fetchDietRegime(ctx, int(dietID.Int64)); err != nil {
			return Profile{}, fmt.Errorf("fetch diet regime: %w", err)
		}
	}

	return profile, nil
}

// CurrentObjective retrieves the most recently started objective of a
// profile.
func (r *sqliteProfileRepository) CurrentObjective(ctx context.Context, profileID int) (Objective, error) {
	var (
		objective Objective
		startStr  string
		endStr    string
	)

	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, profile_id, category, start_date, end_date
		FROM objectives
		WHERE profile_id = ?
		ORDER BY start_date DESC
		LIMIT 1`, profileID).Scan(
		&objective.ID,
		&objective.ProfileID,
		&objective.Category,
		&startStr,
		&endStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Objective{}, ErrNotFound
	}
	if err != nil {
		return Objective{}, fmt.Errorf("query objective: %w", err)
	}

	if objective.Start, err = time.Parse(dateFormat, startStr); err != nil {
		return Objective{}, fmt.Errorf("parse start date: %w", err)
	}
	if objective.End, err = time.Parse(dateFormat, endStr); err != nil {
		return Objective{}, fmt.Errorf("parse end date: %w", err)
	}

	return objective, nil
}

func (r *sqliteProfileRepository) fetchEquipmentTags(ctx context.Context, categoryID int) (_ []string, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT tag
		FROM equipment_category_tags
		WHERE category_id = ?
		ORDER BY tag`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query equipment tags: %w", err)
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

func (r *sqliteProfileRepository) fetchHealthContext(ctx context.Context, healthID int) (HealthContext, error) {
	medical, err := r.fetchConditions(ctx, "health_medical_conditions", healthID)
	if err != nil {
		return HealthContext{}, fmt.Errorf("fetch medical conditions: %w", err)
	}
	physical, err := r.fetchConditions(ctx, "health_physical_conditions", healthID)
	if err != nil {
		return HealthContext{}, fmt.Errorf("fetch physical conditions: %w", err)
	}
	return HealthContext{
		MedicalConditions:  medical,
		PhysicalConditions: physical,
	}, nil
}

func (r *sqliteProfileRepository) fetchConditions(ctx context.Context, table string, healthID int) (_ []string, err error) {
	// table is one of two fixed names, never user input.
	rows, err := r.db.ReadOnly.QueryContext(ctx, fmt.Sprintf(`
		SELECT condition
		FROM %s
		WHERE health_info_id = ?
		ORDER BY condition`, table), healthID)
	if err != nil {
		return nil, fmt.Errorf("query conditions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var conditions []string
	for rows.Next() {
		var condition string
		if err = rows.Scan(&condition); err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		conditions = append(conditions, condition)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conditions: %w", err)
	}
	return conditions, nil
}

func (r *sqliteProfileRepository) fetchDietRegime(ctx context.Context, dietID int) (_ DietRegime, err error) {
	var regime DietRegime
	err = r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT style
		FROM diet_regimes
		WHERE id = ?`, dietID).Scan(&regime.Style)
	if err != nil {
		return DietRegime{}, fmt.Errorf("query diet regime: %w", err)
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT restriction
		FROM diet_restrictions
		WHERE diet_regime_id = ?
		ORDER BY restriction`, dietID)
	if err != nil {
		return DietRegime{}, fmt.Errorf("query diet restrictions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	for rows.Next() {
		var restriction string
		if err = rows.Scan(&restriction); err != nil {
			return DietRegime{}, fmt.Errorf("scan diet restriction: %w", err)
		}
		regime.Restrictions = append(regime.Restrictions, restriction)
	}
	if err = rows.Err(); err != nil {
		return DietRegime{}, fmt.Errorf("iterate diet restrictions: %w", err)
	}
	return regime, nil
}
