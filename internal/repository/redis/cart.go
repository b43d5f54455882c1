package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/industriassp/storefront/internal/domain"
)

// cartKeyPrefix mirrors the browser storage key of the original storefront.
const cartKeyPrefix = "industriasp_cart:"

// CartStore implements repository.CartStore using Redis. Each session's cart
// is a JSON-encoded line-item array under industriasp_cart:<session>.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCartStore creates a new Redis-backed cart store.
func NewCartStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CartStore {
	return &CartStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Load reads the persisted cart for a session. Absence, transport failures,
// and corrupt payloads all yield an empty slice; entries that fail the
// line-item invariants are dropped individually. Failures are logged but
// never surfaced, so a broken store degrades to an empty cart.
func (s *CartStore) Load(ctx context.Context, sessionID string) []domain.LineItem {
	data, err := s.client.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.WarnContext(ctx, "cart store unreachable, treating as empty",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return []domain.LineItem{}
	}

	return decodeItems(ctx, data, sessionID, s.logger)
}

// decodeItems parses a persisted cart payload, recovering what it can:
// a payload that is not a JSON array at all becomes an empty cart, and
// individual entries that fail to decode or violate invariants are skipped.
func decodeItems(ctx context.Context, data []byte, sessionID string, l *slog.Logger) []domain.LineItem {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		l.DebugContext(ctx, "corrupt persisted cart discarded",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return []domain.LineItem{}
	}

	items := make([]domain.LineItem, 0, len(raw))
	for _, entry := range raw {
		var li domain.LineItem
		if err := json.Unmarshal(entry, &li); err != nil || !li.Valid() {
			l.DebugContext(ctx, "invalid cart entry dropped",
				slog.String("session_id", sessionID),
			)
			continue
		}
		if domain.FindIndex(items, li.ProductID) >= 0 {
			// One line per product; keep the first occurrence.
			continue
		}
		items = append(items, li)
	}
	return items
}

// Save overwrites the persisted cart for a session with the configured TTL.
func (s *CartStore) Save(ctx context.Context, sessionID string, items []domain.LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := s.client.Set(ctx, cartKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Clear deletes the persisted cart key for a session.
func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
