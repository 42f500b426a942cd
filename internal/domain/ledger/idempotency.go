package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// IdempotencyKey construye la clave de idempotencia determinista de un traslado a
// partir de sus entradas de negocio estables: origen del movimiento, artículo,
// extremos, cantidad y el conjunto ordenado de documentos de referencia.
//
// Reintentos del mismo disparador (reentrega de webhook, doble submit de UI, batch
// re-ejecutado) convergen en la misma clave y nunca aplican el cambio dos veces.
func IdempotencyKey(source, itemID string, from, to *string, quantity decimal.Decimal, refIDs ...string) string {
	refs := make([]string, 0, len(refIDs))
	for _, id := range refIDs {
		if id != "" {
			refs = append(refs, id)
		}
	}
	sort.Strings(refs)

	parts := []string{
		"v1",
		source,
		itemID,
		derefOr(from, "-"),
		derefOr(to, "-"),
		quantity.String(),
		strings.Join(refs, ","),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
