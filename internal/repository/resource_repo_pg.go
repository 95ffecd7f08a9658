package repository

import (
	"context"
	"errors"

	"github.com/avialane/charterops/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResourceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
	GetAircraftLimits(ctx context.Context, aircraftID int64) (*domain.AircraftLimits, error)
	ListByKind(ctx context.Context, kind domain.ResourceKind) ([]domain.Resource, error)
	ListByStatus(ctx context.Context, kind domain.ResourceKind, status domain.ResourceStatus) ([]domain.Resource, error)
}

type PGResourceRepository struct {
	db *pgxpool.Pool
}

func NewResourceRepository(db *pgxpool.Pool) ResourceRepository {
	return &PGResourceRepository{db: db}
}

const resourceColumns = `id, kind, name, status, passenger_capacity, crew_capacity, created_at, updated_at`

func scanResource(row pgx.Row) (*domain.Resource, error) {
	var r domain.Resource
	if err := row.Scan(&r.ID, &r.Kind, &r.Name, &r.Status, &r.PassengerCapacity, &r.CrewCapacity, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *PGResourceRepository) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	row := r.db.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id=$1`, id)
	res, err := scanResource(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrResourceNotFound
	}
	return res, err
}

func (r *PGResourceRepository) GetAircraftLimits(ctx context.Context, aircraftID int64) (*domain.AircraftLimits, error) {
	row := r.db.QueryRow(ctx, `SELECT passenger_capacity, crew_capacity FROM resources WHERE id=$1 AND kind=$2`, aircraftID, domain.ResourceKindAircraft)
	var limits domain.AircraftLimits
	if err := row.Scan(&limits.PassengerCapacity, &limits.CrewCapacity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, err
	}
	return &limits, nil
}

func (r *PGResourceRepository) ListByKind(ctx context.Context, kind domain.ResourceKind) ([]domain.Resource, error) {
	rows, err := r.db.Query(ctx, `SELECT `+resourceColumns+` FROM resources WHERE kind=$1 ORDER BY id`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResources(rows)
}

func (r *PGResourceRepository) ListByStatus(ctx context.Context, kind domain.ResourceKind, status domain.ResourceStatus) ([]domain.Resource, error) {
	rows, err := r.db.Query(ctx, `SELECT `+resourceColumns+` FROM resources WHERE kind=$1 AND status=$2 ORDER BY id`, kind, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResources(rows)
}

func collectResources(rows pgx.Rows) ([]domain.Resource, error) {
	resources := make([]domain.Resource, 0)
	for rows.Next() {
		var r domain.Resource
		if err := rows.Scan(&r.ID, &r.Kind, &r.Name, &r.Status, &r.PassengerCapacity, &r.CrewCapacity, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

var _ ResourceRepository = (*PGResourceRepository)(nil)
