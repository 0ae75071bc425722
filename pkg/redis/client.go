package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/controlink-dev/arpoone-gateway/environments"
	"github.com/controlink-dev/arpoone-gateway/internal/domain"
	"github.com/controlink-dev/arpoone-gateway/pkg/logger"
)

type Client struct {
	client valkey.Client
}

const (
	dispatchKeyPrefix = "dispatch:"
	dispatchTTL       = 24 * time.Hour
)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client}, nil
}

// CacheDispatch stores a freshly created dispatch record for the
// cached-lookup endpoint. Entries expire after 24 hours.
func (c *Client) CacheDispatch(ctx context.Context, record *domain.DispatchRecord) error {
	cache := domain.CachedDispatch{
		Channel:   record.Channel,
		MessageID: record.MessageID,
		Recipient: record.Recipient,
		SentAt:    record.SentAt,
	}

	data, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	key := fmt.Sprintf("%s%s:%s", dispatchKeyPrefix, record.Channel, record.MessageID)

	err = c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(dispatchTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache dispatch: %w", err)
	}

	logger.Debugf("Cached dispatch %s in Redis", key)

	return nil
}

// GetAllCachedDispatches returns every cached dispatch entry keyed by
// provider message id.
func (c *Client) GetAllCachedDispatches(ctx context.Context) (map[string]*domain.CachedDispatch, error) {
	pattern := dispatchKeyPrefix + "*"

	var keys []string
	var cursor uint64
	for {
		result := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build())
		if result.Error() != nil {
			return nil, fmt.Errorf("failed to scan cache keys: %w", result.Error())
		}

		scanResult, err := result.AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to parse scan result: %w", err)
		}

		keys = append(keys, scanResult.Elements...)
		cursor = scanResult.Cursor

		if cursor == 0 {
			break
		}
	}

	result := make(map[string]*domain.CachedDispatch)

	for _, key := range keys {
		getResult := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
		if getResult.Error() != nil {
			continue
		}

		data, err := getResult.ToString()
		if err != nil {
			continue
		}

		var cache domain.CachedDispatch
		if err := json.Unmarshal([]byte(data), &cache); err != nil {
			continue
		}

		messageID := key
		if idx := strings.LastIndex(key, ":"); idx >= 0 {
			messageID = key[idx+1:]
		}

		result[messageID] = &cache
	}

	return result, nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
