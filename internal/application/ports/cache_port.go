package ports

import (
	"context"
	"time"
)

// InsightsCache define el puerto de salida para la caché externa de resultados.
// Las claves incluyen la huella del snapshot, así que un cambio en los datos
// produce una clave nueva y nunca hace falta invalidar.
type InsightsCache interface {
	// Get decodifica el valor guardado en dst. Devuelve false si la clave no existe o expiró.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set guarda v bajo key durante ttl.
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

// NoopCache caché deshabilitada: nunca encuentra nada y descarta lo que recibe.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (NoopCache) Set(context.Context, string, any, time.Duration) error { return nil }

var _ InsightsCache = NoopCache{}
