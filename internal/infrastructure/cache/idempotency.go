package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInFlight otra petición con la misma clave todavía se está procesando.
var ErrInFlight = errors.New("petición con la misma Idempotency-Key en curso")

const pendingMarker = "__pending__"

// IdempotencyStore reserva claves de idempotencia en Redis.
// Mientras la operación corre la clave vale pendingMarker; al terminar guarda el id del recurso creado.
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewIdempotencyStore construye el store. scope separa claves de distintos endpoints.
func NewIdempotencyStore(client redis.Cmdable, scope string, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl, prefix: "idem:" + scope + ":"}
}

// Begin reserva key. Devuelve el id guardado si la clave ya se completó,
// ErrInFlight si sigue pendiente, o "" si la reserva es nueva y el llamador debe ejecutar la operación.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("idempotency key requerida")
	}
	k := s.prefix + key
	ok, err := s.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("cache: reservar clave: %w", err)
	}
	if ok {
		return "", nil
	}
	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInFlight
	}
	if err != nil {
		return "", fmt.Errorf("cache: leer clave: %w", err)
	}
	if val == pendingMarker {
		return "", ErrInFlight
	}
	return val, nil
}

// Complete guarda el id resultante para las repeticiones.
func (s *IdempotencyStore) Complete(ctx context.Context, key, resultID string) error {
	if err := s.client.Set(ctx, s.prefix+key, resultID, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: completar clave: %w", err)
	}
	return nil
}

// Release libera la reserva cuando la operación falló, para permitir reintentos.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("cache: liberar clave: %w", err)
	}
	return nil
}
