package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mlefevre/fitplan/internal/sqlite"
)

// sqliteProgramRepository implements programRepository.
type sqliteProgramRepository struct {
	baseRepository
}

func newSQLiteProgramRepository(db *sqlite.Database, logger *slog.Logger) *sqliteProgramRepository {
	return &sqliteProgramRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Create persists the whole program aggregate, both sub-programs included, in
// a single transaction. Either everything is stored or nothing is.
func (r *sqliteProgramRepository) Create(ctx context.Context, program Program) (_ Program, err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return Program{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO programs (public_id, name, description, start_date, end_date, profile_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		program.PublicID,
		program.Name,
		program.Description,
		program.Start.Format(dateFormat),
		program.End.Format(dateFormat),
		program.ProfileID,
	)
	if err != nil {
		return Program{}, fmt.Errorf("insert program: %w", err)
	}
	programID, err := result.LastInsertId()
	if err != nil {
		return Program{}, fmt.Errorf("get program ID: %w", err)
	}
	program.ID = int(programID)

	if err = r.insertTraining(ctx, tx, program.ID, program.Training); err != nil {
		return Program{}, fmt.Errorf("insert training sub-program: %w", err)
	}
	if err = r.insertNutrition(ctx, tx, program.ID, program.Nutrition); err != nil {
		return Program{}, fmt.Errorf("insert nutrition sub-program: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return Program{}, fmt.Errorf("commit transaction: %w", err)
	}
	return program, nil
}

func (r *sqliteProgramRepository) insertTraining(
	ctx context.Context,
	tx *sql.Tx,
	programID int,
	training TrainingSubProgram,
) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO sub_programs (program_id, kind, name, description)
		VALUES (?, 'training', ?, ?)`,
		programID, training.Name, training.Description)
	if err != nil {
		return fmt.Errorf("insert sub-program: %w", err)
	}
	subProgramID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get sub-program ID: %w", err)
	}

	for _, session := range training.Sessions {
		var sessionResult sql.Result
		sessionResult, err = tx.ExecContext(ctx, `
			INSERT INTO sessions (sub_program_id, session_date, session_time, name, note, duration_minutes, completed)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			subProgramID,
			session.Date.Format(dateFormat),
			session.Time,
			session.Name,
			session.Note,
			session.DurationMinutes,
			session.Completed,
		)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		var sessionID int64
		if sessionID, err = sessionResult.LastInsertId(); err != nil {
			return fmt.Errorf("get session ID: %w", err)
		}

		for position, link := range session.Exercises {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO session_exercises (session_id, exercise_id, position, reps, sets, rest_seconds)
				VALUES (?, ?, ?, ?, ?, ?)`,
				sessionID, link.ExerciseID, position, link.Reps, link.Sets, link.RestSeconds)
			if err != nil {
				return fmt.Errorf("insert session exercise: %w", err)
			}
		}
	}
	return nil
}

func (r *sqliteProgramRepository) insertNutrition(
	ctx context.Context,
	tx *sql.Tx,
	programID int,
	nutrition NutritionSubProgram,
) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO sub_programs (program_id, kind, name, description)
		VALUES (?, 'nutrition', ?, ?)`,
		programID, nutrition.Name, nutrition.Description)
	if err != nil {
		return fmt.Errorf("insert sub-program: %w", err)
	}
	subProgramID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get sub-program ID: %w", err)
	}

	for _, slot := range nutrition.Slots {
		var slotResult sql.Result
		slotResult, err = tx.ExecContext(ctx, `
			INSERT INTO meal_slots (sub_program_id, slot_date, slot_time, meal_type, note)
			VALUES (?, ?, ?, ?, ?)`,
			subProgramID,
			slot.Date.Format(dateFormat),
			slot.Time,
			slot.MealType,
			slot.Note,
		)
		if err != nil {
			return fmt.Errorf("insert meal slot: %w", err)
		}
		var slotID int64
		if slotID, err = slotResult.LastInsertId(); err != nil {
			return fmt.Errorf("get meal slot ID: %w", err)
		}

		for position, link := range slot.Dishes {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO meal_dishes (slot_id, dish_id, position, quantity)
				VALUES (?, ?, ?, ?)`,
				slotID, link.DishID, position, link.Quantity)
			if err != nil {
				return fmt.Errorf("insert meal dish: %w", err)
			}
		}
	}
	return nil
}

// Get loads a program aggregate by its public ID.
func (r *sqliteProgramRepository) Get(ctx context.Context, publicID string) (Program, error) {
	var (
		program  Program
		startStr string
		endStr   string
	)

	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, public_id, name, description, start_date, end_date, profile_id
		FROM programs
		WHERE public_id = ?`, publicID).Scan(
		&program.ID,
		&program.PublicID,
		&program.Name,
		&program.Description,
		&startStr,
		&endStr,
		&program.ProfileID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Program{}, ErrNotFound
	}
	if err != nil {
		return Program{}, fmt.Errorf("query program: %w", err)
	}

	if program.Start, err = time.Parse(dateFormat, startStr); err != nil {
		return Program{}, fmt.Errorf("parse start date: %w", err)
	}
	if program.End, err = time.Parse(dateFormat, endStr); err != nil {
		return Program{}, fmt.Errorf("parse end date: %w", err)
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, kind, name, description
		FROM sub_programs
		WHERE program_id = ?
		ORDER BY id`, program.ID)
	if err != nil {
		return Program{}, fmt.Errorf("query sub-programs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	type subProgramRow struct {
		id          int
		kind        string
		name        string
		description string
	}
	var subPrograms []subProgramRow
	for rows.Next() {
		var row subProgramRow
		if err = rows.Scan(&row.id, &row.kind, &row.name, &row.description); err != nil {
			return Program{}, fmt.Errorf("scan sub-program: %w", err)
		}
		subPrograms = append(subPrograms, row)
	}
	if err = rows.Err(); err != nil {
		return Program{}, fmt.Errorf("iterate sub-programs: %w", err)
	}

	for _, sub := range subPrograms {
		switch sub.kind {
		case "training":
			program.Training.Name = sub.name
			program.Training.Description = sub.description
			if program.Training.Sessions, err = r.fetchSessions(ctx, sub.id); err != nil {
				return Program{}, fmt.Errorf("fetch sessions: %w", err)
			}
		case "nutrition":
			program.Nutrition.Name = sub.name
			program.Nutrition.Description = sub.description
			if program.Nutrition.Slots, err = r.fetchMealSlots(ctx, sub.id); err != nil {
				return Program{}, fmt.Errorf("fetch meal slots: %w", err)
			}
		}
	}

	return program, nil
}

func (r *sqliteProgramRepository) fetchSessions(ctx context.Context, subProgramID int) (_ []Session, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT s.id, s.session_date, s.session_time, s.name, s.note, s.duration_minutes, s.completed
		FROM sessions s
		WHERE s.sub_program_id = ?
		ORDER BY s.session_date, s.id`, subProgramID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var (
		sessions   []Session
		sessionIDs []int
	)
	for rows.Next() {
		var (
			session Session
			id      int
			dateStr string
		)
		if err = rows.Scan(&id, &dateStr, &session.Time, &session.Name, &session.Note,
			&session.DurationMinutes, &session.Completed); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if session.Date, err = time.Parse(dateFormat, dateStr); err != nil {
			return nil, fmt.Errorf("parse session date: %w", err)
		}
		sessions = append(sessions, session)
		sessionIDs = append(sessionIDs, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	for i, sessionID := range sessionIDs {
		if sessions[i].Exercises, err = r.fetchSessionExercises(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("fetch exercises for session %d: %w", sessionID, err)
		}
	}
	return sessions, nil
}

func (r *sqliteProgramRepository) fetchSessionExercises(ctx context.Context, sessionID int) (_ []ExerciseLink, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT se.exercise_id, e.name, se.reps, se.sets, se.rest_seconds
		FROM session_exercises se
		JOIN exercises e ON e.id = se.exercise_id
		WHERE se.session_id = ?
		ORDER BY se.position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var links []ExerciseLink
	for rows.Next() {
		var link ExerciseLink
		if err = rows.Scan(&link.ExerciseID, &link.Name, &link.Reps, &link.Sets, &link.RestSeconds); err != nil {
			return nil, fmt.Errorf("scan session exercise: %w", err)
		}
		links = append(links, link)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session exercises: %w", err)
	}
	return links, nil
}

func (r *sqliteProgramRepository) fetchMealSlots(ctx context.Context, subProgramID int) (_ []MealSlot, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, slot_date, slot_time, meal_type, note
		FROM meal_slots
		WHERE sub_program_id = ?
		ORDER BY slot_date, id`, subProgramID)
	if err != nil {
		return nil, fmt.Errorf("query meal slots: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var (
		slots   []MealSlot
		slotIDs []int
	)
	for rows.Next() {
		var (
			slot    MealSlot
			id      int
			dateStr string
		)
		if err = rows.Scan(&id, &dateStr, &slot.Time, &slot.MealType, &slot.Note); err != nil {
			return nil, fmt.Errorf("scan meal slot: %w", err)
		}
		if slot.Date, err = time.Parse(dateFormat, dateStr); err != nil {
			return nil, fmt.Errorf("parse slot date: %w", err)
		}
		slots = append(slots, slot)
		slotIDs = append(slotIDs, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal slots: %w", err)
	}

	for i, slotID := range slotIDs {
		if slots[i].Dishes, err = r.fetchMealDishes(ctx, slotID); err != nil {
			return nil, fmt.Errorf("fetch dishes for slot %d: %w", slotID, err)
		}
	}
	return slots, nil
}

func (r *sqliteProgramRepository) fetchMealDishes(ctx context.Context, slotID int) (_ []DishLink, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT md.dish_id, d.name, d.calories, md.quantity
		FROM meal_dishes md
		JOIN dishes d ON d.id = md.dish_id
		WHERE md.slot_id = ?
		ORDER BY md.position`, slotID)
	if err != nil {
		return nil, fmt.Errorf("query meal dishes: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var links []DishLink
	for rows.Next() {
		var link DishLink
		if err = rows.Scan(&link.DishID, &link.Name, &link.Calories, &link.Quantity); err != nil {
			return nil, fmt.Errorf("scan meal dish: %w", err)
		}
		links = append(links, link)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal dishes: %w", err)
	}
	return links, nil
}
