package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dsa-interview-service/internal/domain"
)

// ExportArchive keeps session export documents in Redis with a TTL, giving
// completed interviews a retention window beyond process memory.
type ExportArchive struct {
	client *redis.Client
	ttl    time.Duration
}

func NewExportArchive(client *redis.Client, ttl time.Duration) *ExportArchive {
	return &ExportArchive{client: client, ttl: ttl}
}

func (a *ExportArchive) Archive(ctx context.Context, export domain.SessionExport) error {
	data, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := a.client.Set(ctx, a.key(export.SessionID), data, a.ttl).Err(); err != nil {
		return fmt.Errorf("archive export: %w", err)
	}
	return nil
}

// Load retrieves an archived export, if its retention window is still open.
func (a *ExportArchive) Load(ctx context.Context, sessionID string) (domain.SessionExport, error) {
	raw, err := a.client.Get(ctx, a.key(sessionID)).Result()
	if err != nil {
		return domain.SessionExport{}, domain.ErrSessionNotFound
	}
	var export domain.SessionExport
	if err := json.Unmarshal([]byte(raw), &export); err != nil {
		return domain.SessionExport{}, fmt.Errorf("unmarshal export: %w", err)
	}
	return export, nil
}

func (a *ExportArchive) key(sessionID string) string {
	return "interview:export:" + sessionID
}
