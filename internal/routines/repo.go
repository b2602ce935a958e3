package routines

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/internal/workout"
	"github.com/2beens/liftlog/pkg"
)

var (
	ErrRoutineNotFound = errors.New("routine not found")
	// ErrActivationConflict is returned when a concurrent change left two active routines.
	ErrActivationConflict = errors.New("another routine was activated concurrently")
)

// Querier is satisfied by both the pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the user's routines in creation order, each with its exercises.
func (r *Repo) List(ctx context.Context, userID int) (_ []workout.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, is_active, training_days, rest_days, created_at
			FROM routines
			WHERE user_id = $1
			ORDER BY created_at, id;`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	routines, err := pgx.CollectRows(rows, scanRoutine)
	if err != nil {
		return nil, fmt.Errorf("collect routines: %w", err)
	}

	exercises, err := r.listExercises(ctx, r.db, `WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}

	byRoutine := make(map[int][]workout.Exercise, len(routines))
	for _, ex := range exercises {
		byRoutine[ex.RoutineID] = append(byRoutine[ex.RoutineID], ex)
	}
	for i := range routines {
		routines[i].Exercises = byRoutine[routines[i].ID]
	}

	span.SetAttributes(attribute.Int("routines.count", len(routines)))
	return routines, nil
}

func (r *Repo) Get(ctx context.Context, userID, id int) (_ *workout.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	routine, err := r.get(ctx, r.db, userID, id)
	if err != nil {
		return nil, err
	}
	return routine, nil
}

// Save creates or updates the routine and replaces its exercise set in one transaction.
// A new routine keeps routine.IsActive. An update keeps the stored active flag, read under
// a row lock, so a concurrent activation is never undone. An active routine deactivates
// all other routines of the user.
func (r *Repo) Save(ctx context.Context, routine workout.Routine) (_ *workout.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("id", routine.ID),
		attribute.Int("exercises.count", len(routine.Exercises)),
	)

	var saved *workout.Routine
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if routine.ID != 0 {
			err := tx.QueryRow(
				ctx,
				`SELECT is_active FROM routines WHERE id = $1 AND user_id = $2 FOR UPDATE;`,
				routine.ID, routine.UserID,
			).Scan(&routine.IsActive)
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRoutineNotFound
			}
			if err != nil {
				return fmt.Errorf("lock routine: %w", err)
			}
		}

		if routine.IsActive {
			if _, err := tx.Exec(
				ctx,
				`UPDATE routines SET is_active = false WHERE user_id = $1 AND is_active AND id <> $2;`,
				routine.UserID, routine.ID,
			); err != nil {
				return fmt.Errorf("deactivate other routines: %w", err)
			}
		}

		var err error
		if routine.ID == 0 {
			err = tx.QueryRow(
				ctx,
				`INSERT INTO routines (user_id, name, is_active, training_days, rest_days)
					VALUES ($1, $2, $3, $4, $5)
				RETURNING id, created_at;`,
				routine.UserID, routine.Name, routine.IsActive, routine.TrainingDays, routine.RestDays,
			).Scan(&routine.ID, &routine.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert routine: %w", err)
			}
		} else {
			err = tx.QueryRow(
				ctx,
				`UPDATE routines SET name = $1, training_days = $2, rest_days = $3
					WHERE id = $4 AND user_id = $5
				RETURNING created_at;`,
				routine.Name, routine.TrainingDays, routine.RestDays, routine.ID, routine.UserID,
			).Scan(&routine.CreatedAt)
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRoutineNotFound
			}
			if err != nil {
				return fmt.Errorf("update routine: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM exercises WHERE routine_id = $1;`, routine.ID); err != nil {
			return fmt.Errorf("delete routine exercises: %w", err)
		}

		exercises, err := insertExercises(ctx, tx, routine)
		if err != nil {
			return fmt.Errorf("insert exercises: %w", err)
		}

		routine.Exercises = exercises
		saved = &routine
		return nil
	})
	switch {
	case pkg.IsExclusionViolationError(err):
		return nil, ErrActivationConflict
	case pkg.IsForeignKeyViolationError(err):
		// the routine or its owner was deleted while saving
		return nil, ErrRoutineNotFound
	case err != nil:
		return nil, err
	}

	return saved, nil
}

// SetActive makes id the only active routine of the user, in a single statement.
func (r *Repo) SetActive(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.setactive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE routines SET is_active = (id = $2)
			WHERE user_id = $1
			AND EXISTS (SELECT 1 FROM routines WHERE id = $2 AND user_id = $1);`,
		userID, id,
	)
	if pkg.IsExclusionViolationError(err) {
		return ErrActivationConflict
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
	}
	return nil
}

// Delete removes the routine exercises first, then the routine itself.
func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(
			ctx,
			`DELETE FROM exercises WHERE routine_id = $1 AND user_id = $2;`,
			id, userID,
		); err != nil {
			return fmt.Errorf("delete exercises: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM routines WHERE id = $1 AND user_id = $2;`, id, userID)
		if err != nil {
			return fmt.Errorf("delete routine: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRoutineNotFound
		}
		return nil
	})
}

// DeleteAllForUser removes every exercise and routine of the user.
// q lets the caller run it inside its own transaction.
func (r *Repo) DeleteAllForUser(ctx context.Context, q Querier, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.deleteall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	if q == nil {
		q = r.db
	}

	if _, err := q.Exec(ctx, `DELETE FROM exercises WHERE user_id = $1;`, userID); err != nil {
		return fmt.Errorf("delete exercises: %w", err)
	}
	tag, err := q.Exec(ctx, `DELETE FROM routines WHERE user_id = $1;`, userID)
	if err != nil {
		return fmt.Errorf("delete routines: %w", err)
	}

	log.Debugf("deleted %d routines of user %d", tag.RowsAffected(), userID)
	return nil
}

// ExerciseNames returns the distinct exercise names the user ever saved, sorted.
func (r *Repo) ExerciseNames(ctx context.Context, userID int) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.exercisenames")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT DISTINCT name FROM exercises WHERE user_id = $1 ORDER BY name;`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect names: %w", err)
	}
	return names, nil
}

func (r *Repo) get(ctx context.Context, q Querier, userID, id int) (*workout.Routine, error) {
	rows, err := q.Query(
		ctx,
		`SELECT id, user_id, name, is_active, training_days, rest_days, created_at
			FROM routines
			WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return nil, err
	}

	routine, err := pgx.CollectExactlyOneRow(rows, scanRoutine)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoutineNotFound
	}
	if err != nil {
		return nil, err
	}

	routine.Exercises, err = r.listExercises(ctx, q, `WHERE routine_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return &routine, nil
}

func (r *Repo) listExercises(ctx context.Context, q Querier, where string, arg any) ([]workout.Exercise, error) {
	rows, err := q.Query(
		ctx,
		`SELECT id, routine_id, name, type, sets, reps, weight, day, duration_minutes, distance
			FROM exercises `+where+`
			ORDER BY id;`,
		arg,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanExercise)
}

func insertExercises(ctx context.Context, q Querier, routine workout.Routine) ([]workout.Exercise, error) {
	if len(routine.Exercises) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, ex := range routine.Exercises {
		reps := ""
		if !ex.Reps.IsZero() {
			reps = ex.Reps.String()
		}
		batch.Queue(
			`INSERT INTO exercises
					(routine_id, user_id, name, type, sets, reps, weight, day, duration_minutes, distance)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING id;`,
			routine.ID, routine.UserID, ex.Name, string(ex.Type), ex.Sets, reps, ex.Weight,
			string(ex.Day), ex.Duration, ex.Distance,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer func() {
		if err := results.Close(); err != nil {
			log.Errorf("close exercises batch: %s", err)
		}
	}()

	inserted := make([]workout.Exercise, 0, len(routine.Exercises))
	for _, ex := range routine.Exercises {
		var id int
		if err := results.QueryRow().Scan(&id); err != nil {
			return nil, fmt.Errorf("exercise [%s]: %w", ex.Name, err)
		}
		ex.ID = strconv.Itoa(id)
		ex.RoutineID = routine.ID
		// device-only flags are never persisted
		ex.IsCompleted = false
		ex.IsPR = false
		inserted = append(inserted, ex)
	}
	return inserted, nil
}

func scanRoutine(row pgx.CollectableRow) (workout.Routine, error) {
	var routine workout.Routine
	err := row.Scan(
		&routine.ID,
		&routine.UserID,
		&routine.Name,
		&routine.IsActive,
		&routine.TrainingDays,
		&routine.RestDays,
		&routine.CreatedAt,
	)
	return routine, err
}

func scanExercise(row pgx.CollectableRow) (workout.Exercise, error) {
	var (
		ex   workout.Exercise
		id   int
		kind string
		reps string
		day  string
	)
	if err := row.Scan(
		&id,
		&ex.RoutineID,
		&ex.Name,
		&kind,
		&ex.Sets,
		&reps,
		&ex.Weight,
		&day,
		&ex.Duration,
		&ex.Distance,
	); err != nil {
		return ex, err
	}

	ex.ID = strconv.Itoa(id)
	ex.Type = workout.Kind(kind)
	ex.Day = workout.Day(day)
	if reps != "" {
		parsed, err := workout.ParseReps(reps)
		if err != nil {
			log.Warnf("exercise %d has invalid stored reps [%s]: %s", id, reps, err)
		} else {
			ex.Reps = parsed
		}
	}
	return ex, nil
}
