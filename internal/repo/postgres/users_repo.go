package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slotly/bookhub/internal/domain/user"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom DBObserver
}

func NewUsersRepo(pool *pgxpool.Pool, prom DBObserver) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

// Create relies on the unique index on users.email rather than a prior
// read-check, so two racing registrations cannot both succeed.
func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := observe(r.prom, "users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users(id, name, email, password_hash, role, session_generation, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,0,$6,$7)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailAlreadyUsed
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := observe(r.prom, "users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, password_hash, role, session_generation, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.SessionGeneration,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := observe(r.prom, "users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, password_hash, role, session_generation, created_at, updated_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.SessionGeneration,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := observe(r.prom, "users.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, email, password_hash, role, session_generation, created_at, updated_at
			 FROM users
			 ORDER BY created_at DESC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var u user.User

			err = rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.SessionGeneration, &u.CreatedAt, &u.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// SessionGeneration / BumpSessionGeneration back the revocation store.

func (r *UsersRepo) SessionGeneration(ctx context.Context, userID string) (int64, error) {
	var gen int64

	err := observe(r.prom, "users.session_generation", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT session_generation FROM users WHERE id = $1`, userID).Scan(&gen)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, user.ErrNotFound
		}
		return 0, err
	}

	return gen, nil
}

func (r *UsersRepo) BumpSessionGeneration(ctx context.Context, userID string) (int64, error) {
	var gen int64

	err := observe(r.prom, "users.bump_session_generation", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE users
			 SET session_generation = session_generation + 1,
			     updated_at = NOW()
			 WHERE id = $1
			 RETURNING session_generation`,
			userID).Scan(&gen)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, user.ErrNotFound
		}
		return 0, err
	}

	return gen, nil
}
