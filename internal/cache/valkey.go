package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/unify-bot/unify-dashboard/internal/discord"
	"github.com/valkey-io/valkey-go"
)

// ValkeyCache shares guild lists between dashboard replicas
type ValkeyCache struct {
	client valkey.Client
	prefix string // "unify:guilds:"
	ttl    time.Duration
}

// NewValkeyCache connects to addr and checks the connection
func NewValkeyCache(addr string, ttl time.Duration) (*ValkeyCache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	c := newValkeyCache(client, ttl)
	slog.Info("Initialized Valkey guild cache", "address", addr, "ttl", c.ttl)
	return c, nil
}

func newValkeyCache(client valkey.Client, ttl time.Duration) *ValkeyCache {
	return &ValkeyCache{client: client, prefix: "unify:guilds:", ttl: ttlOrDefault(ttl)}
}

func (c *ValkeyCache) key(userID string) string {
	return c.prefix + userID
}

func (c *ValkeyCache) Get(ctx context.Context, userID string) ([]discord.UserGuild, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(userID)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("valkey get: %w", err)
	}

	var guilds []discord.UserGuild
	if err := json.Unmarshal([]byte(raw), &guilds); err != nil {
		// Unreadable entries are dropped and refetched
		slog.Warn("Discarding undecodable guild cache entry", "user_id", userID, "error", err)
		_ = c.Delete(ctx, userID)
		return nil, ErrMiss
	}
	return guilds, nil
}

func (c *ValkeyCache) Set(ctx context.Context, userID string, guilds []discord.UserGuild) error {
	data, err := json.Marshal(guilds)
	if err != nil {
		return fmt.Errorf("failed to marshal guilds: %w", err)
	}

	key := c.key(userID)
	results := c.client.DoMulti(ctx,
		c.client.B().Set().Key(key).Value(string(data)).Build(),
		c.client.B().Expire().Key(key).Seconds(int64(c.ttl.Seconds())).Build(),
	)
	for _, r := range results {
		if err := r.Error(); err != nil {
			return fmt.Errorf("valkey set: %w", err)
		}
	}
	return nil
}

func (c *ValkeyCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(c.key(userID)).Build()).Error(); err != nil {
		return fmt.Errorf("valkey del: %w", err)
	}
	return nil
}

func (c *ValkeyCache) Close() error {
	c.client.Close()
	return nil
}
