package entity

import "time"

// Estados de una pieza asignada a un proyecto/trabajo. El ledger no es dueño del
// ciclo de vida de Part; el auditor solo verifica la correlación estado-ubicación.
const (
	PartStatusInWarehouse = "in_warehouse"
	PartStatusInVehicle   = "in_vehicle"
	PartStatusConsumed    = "consumed"
	PartStatusOrdered     = "ordered"
)

// Part es una unidad rastreada asignada a un proyecto, orden de compra o trabajo.
// Su LocationID debe apuntar siempre a una ubicación conocida del registro y su
// Status debe corresponder con el tipo de esa ubicación.
type Part struct {
	ID         string
	ItemID     string
	LocationID string
	Status     string
	JobID      string
	UpdatedAt  time.Time
}

// ExpectedLocationType devuelve el tipo de ubicación que implica el estado de la
// pieza, o cadena vacía si el estado no restringe la ubicación.
func (p *Part) ExpectedLocationType() string {
	switch p.Status {
	case PartStatusInWarehouse:
		return LocationTypeWarehouse
	case PartStatusInVehicle:
		return LocationTypeVehicle
	case PartStatusConsumed:
		return LocationTypeVirtual
	default:
		return ""
	}
}
