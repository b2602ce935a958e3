package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"
)

// AccountCleanup removes data owned by a user, inside the account deletion transaction.
type AccountCleanup func(ctx context.Context, tx pgx.Tx, userID int) error

type UsersRepo struct {
	db       *pgxpool.Pool
	cleanups []AccountCleanup
}

func NewUsersRepo(db *pgxpool.Pool, cleanups ...AccountCleanup) *UsersRepo {
	return &UsersRepo{
		db:       db,
		cleanups: cleanups,
	}
}

func (r *UsersRepo) Add(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	row := r.db.QueryRow(
		ctx,
		`INSERT INTO users (email, username, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at;`,
		user.Email, user.Username, user.PasswordHash,
	)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &user, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getbyemail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var user User
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE email = $1;`,
		email,
	).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// Delete removes the user and, through the registered cleanups, everything the user owns.
// It all happens in one transaction.
func (r *UsersRepo) Delete(ctx context.Context, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, cleanup := range r.cleanups {
			if err := cleanup(ctx, tx, userID); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1;`, userID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		log.Debugf("user %d deleted", userID)
		return nil
	})
}
