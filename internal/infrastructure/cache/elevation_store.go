package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const elevationPrefix = "elevacion:usada:"

// ElevationStore registra en Redis los jti de elevación consumidos, compartidos entre instancias.
type ElevationStore struct {
	client *redis.Client
}

// NewElevationStore crea el registro sobre client.
func NewElevationStore(client *redis.Client) *ElevationStore {
	return &ElevationStore{client: client}
}

// Consume marca jti con SETNX; la clave vence junto con el token.
func (s *ElevationStore) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if jti == "" {
		return false, errors.New("cache: jti vacío")
	}
	return s.client.SetNX(ctx, elevationPrefix+jti, 1, ttl).Result()
}
