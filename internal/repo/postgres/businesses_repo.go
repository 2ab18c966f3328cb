package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slotly/bookhub/internal/domain/business"
)

type BusinessesRepo struct {
	pool *pgxpool.Pool
	prom DBObserver
}

func NewBusinessesRepo(pool *pgxpool.Pool, prom DBObserver) *BusinessesRepo {
	return &BusinessesRepo{pool: pool, prom: prom}
}

// Create relies on the unique index on businesses.owner_id for the
// one-business-per-user invariant; the handler's friendlier read-check
// is advisory only.
func (r *BusinessesRepo) Create(ctx context.Context, b business.Business) (business.Business, error) {
	err := observe(r.prom, "businesses.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO businesses(id, owner_id, name, description, operating_hours, category, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
			b.ID, b.OwnerID, b.Name, b.Description, b.OperatingHours, b.Category, b.CreatedAt, b.UpdatedAt)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return business.Business{}, business.ErrAlreadyOwned
		}
		return business.Business{}, err
	}

	return b, nil
}

// GetByOwner returns ErrNotFound when the user owns no business; the
// handler translates that into a successful null payload.
func (r *BusinessesRepo) GetByOwner(ctx context.Context, ownerID string) (business.Business, error) {
	var b business.Business

	err := observe(r.prom, "businesses.get_by_owner", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, owner_id, name, description, operating_hours, category, created_at, updated_at
			 FROM businesses
			 WHERE owner_id = $1`,
			ownerID,
		).Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.OperatingHours, &b.Category, &b.CreatedAt, &b.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return business.Business{}, business.ErrNotFound
		}
		return business.Business{}, err
	}

	return b, nil
}

func (r *BusinessesRepo) GetByID(ctx context.Context, id string) (business.Business, error) {
	var b business.Business

	err := observe(r.prom, "businesses.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, owner_id, name, description, operating_hours, category, created_at, updated_at
			 FROM businesses
			 WHERE id = $1`,
			id,
		).Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.OperatingHours, &b.Category, &b.CreatedAt, &b.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return business.Business{}, business.ErrNotFound
		}
		return business.Business{}, err
	}

	return b, nil
}

// List is the discovery projection customers browse; no pagination in
// scope, order is stable for the cacheable listing.
func (r *BusinessesRepo) List(ctx context.Context) ([]business.Business, error) {
	var out []business.Business

	err := observe(r.prom, "businesses.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, owner_id, name, description, operating_hours, category, created_at, updated_at
			 FROM businesses
			 ORDER BY name ASC, id ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var b business.Business

			err = rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.OperatingHours, &b.Category, &b.CreatedAt, &b.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, b)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
