package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

var _ repository.PartRepository = (*PartRepo)(nil)

// PartRepo lectura de piezas asignadas sobre PostgreSQL. El auditor es el único
// consumidor; el ledger nunca escribe en esta tabla.
type PartRepo struct {
	q Querier
}

// NewPartRepository construye el adaptador de piezas. Pasar pool o tx (Querier).
func NewPartRepository(q Querier) *PartRepo {
	return &PartRepo{q: q}
}

// GetByID obtiene una pieza por ID.
func (r *PartRepo) GetByID(id string) (*entity.Part, error) {
	query := `
		SELECT id, item_id, location_id, status, job_id, updated_at
		FROM parts WHERE id = $1`
	var p entity.Part
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.ItemID, &p.LocationID, &p.Status, &p.JobID, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	return &p, nil
}

// ListAll lista todas las piezas asignadas (para la auditoría de correlación).
func (r *PartRepo) ListAll() ([]*entity.Part, error) {
	query := `
		SELECT id, item_id, location_id, status, job_id, updated_at
		FROM parts ORDER BY id`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Part
	for rows.Next() {
		var p entity.Part
		if err := rows.Scan(&p.ID, &p.ItemID, &p.LocationID, &p.Status, &p.JobID, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
