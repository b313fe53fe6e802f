package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// saveDocument - stores v as JSON under key; ttl zero keeps it forever.
func saveDocument(ctx context.Context, client *redis.Client, key string, v any, ttl time.Duration) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not marshal %s: %w", key, err)
	}

	if err = client.Set(ctx, key, doc, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

// loadDocument - reads key into a new T. A missing key returns notFound.
// The returned value is never nil, callers may inspect it on error.
func loadDocument[T any](ctx context.Context, client *redis.Client, key string, notFound error) (*T, error) {
	doc, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return new(T), notFound
	}

	if err != nil {
		return new(T), fmt.Errorf("failed to get %s: %w", key, err)
	}

	value := new(T)
	if err = json.Unmarshal(doc, value); err != nil {
		return new(T), fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return value, nil
}
