package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el saldo actual de un artículo en una ubicación. Si la fila no
// existe devuelve saldo cero con Version 0.
func (r *BalanceRepo) Get(itemID, locationID string) (*entity.Balance, error) {
	query := `
		SELECT item_id, location_id, quantity, min_quantity, version, updated_at
		FROM balances WHERE item_id = $1 AND location_id = $2`
	var b entity.Balance
	err := r.q.QueryRow(context.Background(), query, itemID, locationID).Scan(
		&b.ItemID, &b.LocationID, &b.Quantity, &b.MinQuantity, &b.Version, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Balance{ItemID: itemID, LocationID: locationID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// GetForUpdate obtiene el saldo y bloquea la fila para update (SELECT FOR UPDATE).
// Serializa traslados concurrentes sobre el mismo (artículo, ubicación).
//
// FOR UPDATE no bloquea filas inexistentes: dos transacciones que estrenan el mismo
// par leerían ambas cero y la segunda pisaría el commit de la primera. Por eso se
// materializa primero la fila cero (ON CONFLICT DO NOTHING); el insert garantiza
// que siempre hay fila que bloquear, y si otra transacción la está creando este
// insert espera a su commit antes de continuar.
func (r *BalanceRepo) GetForUpdate(itemID, locationID string) (*entity.Balance, error) {
	insert := `
		INSERT INTO balances (item_id, location_id, quantity, version, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (item_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), insert, itemID, locationID); err != nil {
		return nil, fmt.Errorf("materialize balance: %w", err)
	}
	query := `
		SELECT item_id, location_id, quantity, min_quantity, version, updated_at
		FROM balances WHERE item_id = $1 AND location_id = $2
		FOR UPDATE`
	var b entity.Balance
	err := r.q.QueryRow(context.Background(), query, itemID, locationID).Scan(
		&b.ItemID, &b.LocationID, &b.Quantity, &b.MinQuantity, &b.Version, &b.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return &b, nil
}

// Upsert inserta o actualiza la cantidad e incrementa version en uno.
func (r *BalanceRepo) Upsert(balance *entity.Balance) error {
	query := `
		INSERT INTO balances (item_id, location_id, quantity, min_quantity, version, updated_at)
		VALUES ($1, $2, $3, $4, 1, now())
		ON CONFLICT (item_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
			min_quantity = EXCLUDED.min_quantity,
			version = balances.version + 1,
			updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		balance.ItemID, balance.LocationID, balance.Quantity, balance.MinQuantity,
	)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// Exists indica si hay fila materializada para (artículo, ubicación).
func (r *BalanceRepo) Exists(itemID, locationID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM balances WHERE item_id = $1 AND location_id = $2)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, itemID, locationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("balance exists: %w", err)
	}
	return exists, nil
}

// ListByItem lista los saldos materializados de un artículo en todas sus ubicaciones.
func (r *BalanceRepo) ListByItem(itemID string) ([]*entity.Balance, error) {
	query := `
		SELECT item_id, location_id, quantity, min_quantity, version, updated_at
		FROM balances WHERE item_id = $1 ORDER BY location_id`
	return r.list(query, []any{itemID}, "list balances by item")
}

// ListAll lista todos los saldos materializados (para auditoría).
func (r *BalanceRepo) ListAll() ([]*entity.Balance, error) {
	query := `
		SELECT item_id, location_id, quantity, min_quantity, version, updated_at
		FROM balances ORDER BY item_id, location_id`
	return r.list(query, nil, "list balances")
}

func (r *BalanceRepo) list(query string, args []any, op string) ([]*entity.Balance, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Balance
	for rows.Next() {
		var b entity.Balance
		if err := rows.Scan(&b.ItemID, &b.LocationID, &b.Quantity, &b.MinQuantity,
			&b.Version, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
