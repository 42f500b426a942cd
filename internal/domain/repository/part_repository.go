package repository

import "github.com/fieldops/stock-ledger-api/internal/domain/entity"

// PartRepository puerto de solo lectura sobre las piezas asignadas. El ledger no es
// dueño del ciclo de vida de Part; el auditor solo lee para verificar correlaciones.
type PartRepository interface {
	GetByID(id string) (*entity.Part, error)
	ListAll() ([]*entity.Part, error)
}
