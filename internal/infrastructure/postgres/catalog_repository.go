package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo vista de solo lectura del índice de catálogo sobre PostgreSQL.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador de catálogo. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// GetItem resuelve un artículo del catálogo por ID, o nil si no existe.
func (r *CatalogRepo) GetItem(id string) (*entity.CatalogItem, error) {
	query := `SELECT id, name, sku, trackable FROM catalog_items WHERE id = $1`
	var it entity.CatalogItem
	err := r.q.QueryRow(context.Background(), query, id).Scan(&it.ID, &it.Name, &it.SKU, &it.Trackable)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get catalog item: %w", err)
	}
	return &it, nil
}

// ListTrackable lista los artículos rastreables por existencias.
func (r *CatalogRepo) ListTrackable() ([]*entity.CatalogItem, error) {
	query := `SELECT id, name, sku, trackable FROM catalog_items WHERE trackable ORDER BY name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list trackable items: %w", err)
	}
	defer rows.Close()
	var list []*entity.CatalogItem
	for rows.Next() {
		var it entity.CatalogItem
		if err := rows.Scan(&it.ID, &it.Name, &it.SKU, &it.Trackable); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
