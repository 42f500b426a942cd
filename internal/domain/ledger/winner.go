// Package ledger contiene la lógica pura del ledger de stock: selección de
// ganadores en la deduplicación de ubicaciones y construcción de claves de
// idempotencia. Sin I/O: todo es función determinista sobre valores de dominio.
package ledger

import (
	"strings"

	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
)

// CanonicalCode devuelve el código canónico esperado para una ubicación de un
// tipo y clave de identidad dados.
func CanonicalCode(locType, identityKey string) string {
	switch locType {
	case entity.LocationTypeVehicle:
		return entity.VehicleCode(identityKey)
	case entity.LocationTypeWarehouse:
		if identityKey == entity.IdentityKeyPrimary {
			return entity.CodeWarehouseMain
		}
		return identityKey
	case entity.LocationTypeLoadingBay:
		return entity.CodeLoadingBay
	case entity.LocationTypeVirtual:
		return entity.CodeConsumed
	case entity.LocationTypeSupplier:
		return identityKey
	}
	return identityKey
}

// displayPrefix prefijo canónico del nombre visible por tipo de ubicación.
func displayPrefix(locType string) string {
	switch locType {
	case entity.LocationTypeVehicle:
		return "Vehicle: "
	case entity.LocationTypeWarehouse:
		return "Warehouse: "
	case entity.LocationTypeSupplier:
		return "Supplier: "
	}
	return ""
}

// HasCleanName indica si el nombre visible sigue el patrón canónico de prefijo
// único. Un prefijo duplicado ("Vehicle: Vehicle: X") delata un registro creado
// a partir de otro ya prefijado y lo descalifica.
func HasCleanName(loc *entity.Location) bool {
	prefix := displayPrefix(loc.Type)
	if prefix == "" {
		return loc.Name != ""
	}
	if !strings.HasPrefix(loc.Name, prefix) {
		return false
	}
	rest := strings.TrimPrefix(loc.Name, prefix)
	return !strings.HasPrefix(rest, prefix)
}

// SelectWinner elige el registro canónico superviviente entre ubicaciones
// duplicadas de la misma (tipo, clave de identidad). Orden total:
//
//  1. código canónico exacto
//  2. nombre visible con prefijo único (sin prefijo doblado)
//  3. actualizada más recientemente
//  4. creada más temprano
//  5. ID lexicográficamente menor (desempate estable)
//
// Es una función pura: con el mismo conjunto de duplicados siempre devuelve el
// mismo ganador, lo que hace la pasada de deduplicación idempotente.
func SelectWinner(locations []*entity.Location) *entity.Location {
	if len(locations) == 0 {
		return nil
	}
	winner := locations[0]
	for _, cand := range locations[1:] {
		if beats(cand, winner) {
			winner = cand
		}
	}
	return winner
}

// beats indica si a precede a b en el orden total de selección.
func beats(a, b *entity.Location) bool {
	aCanon := a.Code == CanonicalCode(a.Type, a.IdentityKey())
	bCanon := b.Code == CanonicalCode(b.Type, b.IdentityKey())
	if aCanon != bCanon {
		return aCanon
	}
	aClean, bClean := HasCleanName(a), HasCleanName(b)
	if aClean != bClean {
		return aClean
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
