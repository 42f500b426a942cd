package entity

// CatalogItem es la vista de solo lectura del catálogo de artículos (CatalogIndex).
// El ledger no es dueño del catálogo: solo resuelve nombre, SKU y si el artículo
// se rastrea por existencias.
type CatalogItem struct {
	ID        string
	Name      string
	SKU       string
	Trackable bool
}
