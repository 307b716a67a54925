// Package session caches generated network snapshots per session so the
// model is not asked to regenerate them on every request.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/bewatu/internal/network"
)

var ErrNotFound = errors.New("session data not found")

// Store is a get/set/clear cache keyed by session id.
type Store interface {
	Get(ctx context.Context, sessionID string) (*network.Data, error)
	Set(ctx context.Context, sessionID string, data *network.Data) error
	Clear(ctx context.Context, sessionID string) error
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	DefaultTTL = 24 * time.Hour
)

func validateID(sessionID string) (string, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return "", fmt.Errorf("session id is required")
	}
	return id, nil
}
