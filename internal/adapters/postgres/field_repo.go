package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// FieldRepo implements ports.FieldRepository with pgx.
type FieldRepo struct {
	db *DB
}

// NewFieldRepo creates a new FieldRepo.
func NewFieldRepo(db *DB) *FieldRepo {
	return &FieldRepo{db: db}
}

const fieldColumns = `id, name, location, boundary, size_acres, COALESCE(soil_type, ''),
	to_char(last_planted_date, 'YYYY-MM-DD'), created_at, updated_at`

// Create inserts a field. The boundary is stored as a JSONB ring of [lat, lng] pairs.
func (r *FieldRepo) Create(ctx context.Context, f *domain.Field) error {
	boundary, err := json.Marshal(f.Boundary)
	if err != nil {
		return fmt.Errorf("encode boundary: %w", err)
	}
	var soil *string
	if f.SoilType != "" {
		soil = &f.SoilType
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO fields (id, name, location, boundary, size_acres, soil_type, last_planted_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8)
	`, f.ID, f.Name, f.Location, boundary, f.SizeAcres, soil, f.LastPlantedDate, f.CreatedAt)
	return err
}

// GetByID returns a field by UUID.
func (r *FieldRepo) GetByID(ctx context.Context, id string) (*domain.Field, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+fieldColumns+` FROM fields WHERE id = $1`, id)
	f, err := scanField(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("field %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// List returns fields newest first, with the total row count.
func (r *FieldRepo) List(ctx context.Context, offset, limit int) ([]domain.Field, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM fields`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count fields: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+fieldColumns+` FROM fields
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	fields := make([]domain.Field, 0, limit)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, 0, err
		}
		fields = append(fields, *f)
	}
	return fields, total, rows.Err()
}

// Delete removes a field.
func (r *FieldRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM fields WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("field %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanField(row pgx.Row) (*domain.Field, error) {
	var (
		f        domain.Field
		boundary []byte
	)
	if err := row.Scan(
		&f.ID, &f.Name, &f.Location, &boundary, &f.SizeAcres, &f.SoilType,
		&f.LastPlantedDate, &f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(boundary, &f.Boundary); err != nil {
		return nil, fmt.Errorf("decode boundary of field %s: %w", f.ID, err)
	}
	return &f, nil
}
