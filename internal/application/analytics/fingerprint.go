package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/insights"
)

const cacheKeyPrefix = "quota"

// fingerprintPayload contenido que identifica un snapshot. AsOf entra solo como día
// calendario: dos lecturas del mismo día sobre los mismos datos comparten huella.
type fingerprintPayload struct {
	AsOfDay   string
	Customers []*entity.Customer
	Products  []*entity.Product
	Quotes    []*entity.Quote
	Items     []*entity.QuoteItem
}

// fingerprint SHA-256 (hex) de la codificación msgpack del snapshot.
func fingerprint(s *insights.Snapshot) (string, error) {
	raw, err := msgpack.Marshal(fingerprintPayload{
		AsOfDay:   s.AsOf.UTC().Format("2006-01-02"),
		Customers: s.Customers,
		Products:  s.Products,
		Quotes:    s.Quotes,
		Items:     s.Items,
	})
	if err != nil {
		return "", fmt.Errorf("analytics.fingerprint: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// cacheKey clave "quota:<sección>:<huella>".
func cacheKey(section string, s *insights.Snapshot) (string, error) {
	fp, err := fingerprint(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, section, fp), nil
}
