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

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación de LocationRepository sobre PostgreSQL (usable con pool o tx).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, type, code, vehicle_id, is_primary, is_active, name,
	description, deactivation_note, created_at, updated_at`

// Create persiste una ubicación nueva. El índice único parcial sobre
// (type, identity_key) WHERE is_active convierte la identidad repetida en
// domain.ErrDuplicate.
func (r *LocationRepo) Create(loc *entity.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = now
	}
	loc.UpdatedAt = now
	query := `
		INSERT INTO locations (id, type, code, vehicle_id, is_primary, is_active, name,
			description, deactivation_note, identity_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		loc.ID, loc.Type, loc.Code, loc.VehicleID, loc.IsPrimary, loc.IsActive,
		loc.Name, loc.Description, loc.DeactivationNote, loc.IdentityKey(),
		loc.CreatedAt, loc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID (incluye desactivadas).
func (r *LocationRepo) GetByID(id string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get location")
}

// GetByCode obtiene la ubicación activa con el código dado.
func (r *LocationRepo) GetByCode(code string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE code = $1 AND is_active`
	return r.scanOne(r.q.QueryRow(context.Background(), query, code), "get location by code")
}

// GetActiveByIdentity obtiene la ubicación activa de (tipo, clave de identidad), o nil.
func (r *LocationRepo) GetActiveByIdentity(locType, identityKey string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + `
		FROM locations WHERE type = $1 AND identity_key = $2 AND is_active`
	return r.scanOne(
		r.q.QueryRow(context.Background(), query, locType, identityKey),
		"get location by identity",
	)
}

// ListActive lista ubicaciones activas; locType vacío lista todos los tipos.
func (r *LocationRepo) ListActive(locType string) ([]*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE is_active`
	args := []any{}
	if locType != "" {
		query += ` AND type = $1`
		args = append(args, locType)
	}
	query += ` ORDER BY type, code`
	return r.list(query, args, "list active locations")
}

// ListAll lista todas las ubicaciones, incluidas las desactivadas.
func (r *LocationRepo) ListAll() ([]*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY type, code, created_at`
	return r.list(query, nil, "list locations")
}

// Deactivate marca la ubicación como inactiva con una nota de auditoría.
func (r *LocationRepo) Deactivate(id, reasonNote string) error {
	query := `
		UPDATE locations
		SET is_active = false, deactivation_note = $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, reasonNote)
	if err != nil {
		return fmt.Errorf("deactivate location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LocationRepo) scanOne(row pgx.Row, op string) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(
		&l.ID, &l.Type, &l.Code, &l.VehicleID, &l.IsPrimary, &l.IsActive,
		&l.Name, &l.Description, &l.DeactivationNote, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}

func (r *LocationRepo) list(query string, args []any, op string) ([]*entity.Location, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.Type, &l.Code, &l.VehicleID, &l.IsPrimary, &l.IsActive,
			&l.Name, &l.Description, &l.DeactivationNote, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
