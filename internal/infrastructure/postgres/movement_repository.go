package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del ledger de movimientos sobre PostgreSQL
// (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, item_id, quantity, from_location_id, to_location_id, source,
	idempotency_key, actor, write_source, note, reference_id, reference_type, created_at`

// Create persiste un movimiento. El índice único sobre idempotency_key convierte
// la inserción duplicada en domain.ErrDuplicate.
func (r *MovementRepo) Create(movement *entity.MovementRecord) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO movements (id, item_id, quantity, from_location_id, to_location_id, source,
			idempotency_key, actor, write_source, note, reference_id, reference_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ItemID, movement.Quantity,
		movement.FromLocationID, movement.ToLocationID, movement.Source,
		movement.IdempotencyKey, movement.Actor, movement.WriteSource,
		movement.Note, movement.ReferenceID, movement.ReferenceType, movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get movement")
}

// GetByIdempotencyKey devuelve el movimiento registrado con esa clave, o nil.
func (r *MovementRepo) GetByIdempotencyKey(key string) (*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE idempotency_key = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, key), "get movement by key")
}

// FirstSeed devuelve la primera siembra registrada para (artículo, ubicación), o nil.
func (r *MovementRepo) FirstSeed(itemID, locationID string) (*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements
		WHERE item_id = $1 AND to_location_id = $2 AND source = $3
		ORDER BY created_at ASC LIMIT 1`
	return r.scanOne(
		r.q.QueryRow(context.Background(), query, itemID, locationID, entity.SourceInitialSeed),
		"get first seed",
	)
}

// ListByLocation lista movimientos con la ubicación en cualquiera de los extremos,
// en un rango de fechas.
func (r *MovementRepo) ListByLocation(locationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements WHERE (from_location_id = $1 OR to_location_id = $1)`
	args := []any{locationID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args, "list by location")
}

// ListByItem lista movimientos de un artículo en un rango de fechas.
func (r *MovementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE item_id = $1`
	args := []any{itemID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args, "list by item")
}

// ListAll lista movimientos paginados del ledger completo.
func (r *MovementRepo) ListAll(limit, offset int) ([]*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(query, []any{limit, offset}, "list movements")
}

func (r *MovementRepo) scanOne(row pgx.Row, op string) (*entity.MovementRecord, error) {
	var m entity.MovementRecord
	err := row.Scan(
		&m.ID, &m.ItemID, &m.Quantity, &m.FromLocationID, &m.ToLocationID, &m.Source,
		&m.IdempotencyKey, &m.Actor, &m.WriteSource, &m.Note, &m.ReferenceID,
		&m.ReferenceType, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}

func (r *MovementRepo) list(query string, args []any, op string) ([]*entity.MovementRecord, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.MovementRecord
	for rows.Next() {
		var m entity.MovementRecord
		if err := rows.Scan(
			&m.ID, &m.ItemID, &m.Quantity, &m.FromLocationID, &m.ToLocationID, &m.Source,
			&m.IdempotencyKey, &m.Actor, &m.WriteSource, &m.Note, &m.ReferenceID,
			&m.ReferenceType, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
