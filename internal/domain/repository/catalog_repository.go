package repository

import "github.com/fieldops/stock-ledger-api/internal/domain/entity"

// CatalogRepository puerto de solo lectura sobre el índice de catálogo externo
// (CatalogIndex): resuelve un artículo a nombre, SKU y si es rastreable.
type CatalogRepository interface {
	GetItem(id string) (*entity.CatalogItem, error)
	ListTrackable() ([]*entity.CatalogItem, error)
}
