package entity

import (
	"strings"
	"time"
)

// Tipos de ubicación física o virtual donde puede residir stock.
const (
	LocationTypeWarehouse  = "warehouse"   // bodega física
	LocationTypeVehicle    = "vehicle"     // vehículo de técnico
	LocationTypeSupplier   = "supplier"    // proveedor (stock nocional ilimitado)
	LocationTypeLoadingBay = "loading_bay" // muelle de carga transitorio
	LocationTypeVirtual    = "virtual"     // sumidero virtual (ej. consumido)
)

// Códigos canónicos reservados.
const (
	CodeWarehouseMain = "WAREHOUSE_MAIN"
	CodeLoadingBay    = "LOADING_BAY"
	CodeConsumed      = "CONSUMED"

	vehicleCodePrefix  = "VEHICLE_"
	supplierCodePrefix = "SUPPLIER_"
)

// IdentityKeyPrimary clave de identidad de la bodega principal.
const IdentityKeyPrimary = "primary"

// Location representa una ubicación canónica donde reside stock (bodega, vehículo,
// proveedor, muelle de carga o sumidero virtual). Nunca se elimina físicamente:
// la deduplicación solo la desactiva para preservar el historial del ledger.
type Location struct {
	ID          string
	Type        string
	Code        string
	VehicleID   string // solo para Type = vehicle
	IsPrimary   bool   // solo para Type = warehouse
	IsActive    bool
	Name        string
	Description string
	// DeactivationNote nota de auditoría escrita al desactivar (ej. referencia al
	// ganador de la deduplicación). Vacía mientras la ubicación está activa.
	DeactivationNote string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ValidLocationType indica si el tipo de ubicación es reconocido.
func ValidLocationType(t string) bool {
	switch t {
	case LocationTypeWarehouse, LocationTypeVehicle, LocationTypeSupplier,
		LocationTypeLoadingBay, LocationTypeVirtual:
		return true
	}
	return false
}

// VehicleCode devuelve el código canónico de la ubicación de un vehículo.
func VehicleCode(vehicleID string) string { return vehicleCodePrefix + vehicleID }

// SupplierCode devuelve el código canónico de la ubicación de un proveedor.
func SupplierCode(supplierID string) string { return supplierCodePrefix + supplierID }

// IdentityKey devuelve la clave de identidad de la ubicación dentro de su tipo:
// el ID del vehículo para vehicle, "primary" para la bodega principal, y el código
// fijo para el resto. Como máximo una ubicación activa comparte (tipo, clave).
func (l *Location) IdentityKey() string {
	switch l.Type {
	case LocationTypeVehicle:
		return l.VehicleID
	case LocationTypeWarehouse:
		if l.IsPrimary {
			return IdentityKeyPrimary
		}
		return l.Code
	default:
		return l.Code
	}
}

// IsReservedCode indica si el código es uno de los reservados que jamás pueden ser
// destino de siembras ni de recepciones de stock nuevo.
func IsReservedCode(code string) bool {
	return code == CodeLoadingBay || code == CodeConsumed
}

// ParseVehicleCode extrae el ID del vehículo de un código VEHICLE_<id>.
// Devuelve cadena vacía si el código no sigue el patrón.
func ParseVehicleCode(code string) string {
	if !strings.HasPrefix(code, vehicleCodePrefix) {
		return ""
	}
	return strings.TrimPrefix(code, vehicleCodePrefix)
}
