package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

// Client stores live specialist status. Entries expire after ttl so a
// specialist whose status feed goes quiet drops out of validation instead of
// looking available forever.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func statusKey(specialistID string) string {
	return fmt.Sprintf("specialist:status:%s", specialistID)
}

func assignmentKey(specialistID string) string {
	return fmt.Sprintf("specialist:assignments:%s", specialistID)
}

func (c *Client) SetStatus(ctx context.Context, specialistID string, status models.SpecialistStatus) error {
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	err = c.client.Set(ctx, statusKey(specialistID), data, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set specialist status: %w", err)
	}

	logger.Debug("Specialist status updated",
		zap.String("specialist_id", specialistID),
		zap.Bool("available", status.Available),
		zap.Float64("current_load", status.CurrentLoad),
	)
	return nil
}

// Statuses returns the live status of each id that has one. Missing or
// expired entries are simply absent from the map.
func (c *Client) Statuses(ctx context.Context, ids []string) (map[string]models.SpecialistStatus, error) {
	out := make(map[string]models.SpecialistStatus, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = statusKey(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get specialist statuses: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		status, err := decodeStatus(raw)
		if err != nil {
			logger.Warn("Discarding malformed specialist status",
				zap.String("specialist_id", ids[i]),
				zap.Error(err),
			)
			continue
		}
		out[ids[i]] = status
	}

	return out, nil
}

func decodeStatus(raw string) (models.SpecialistStatus, error) {
	var status models.SpecialistStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return status, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	if status.CurrentLoad < 0 || status.CurrentLoad > 100 {
		return status, fmt.Errorf("current load %v outside [0, 100]", status.CurrentLoad)
	}
	return status, nil
}

func (c *Client) ClearStatus(ctx context.Context, specialistID string) error {
	return c.client.Del(ctx, statusKey(specialistID)).Err()
}

// RecordAssignment counts how often a specialist was the top recommendation.
func (c *Client) RecordAssignment(ctx context.Context, specialistID string) error {
	return c.client.Incr(ctx, assignmentKey(specialistID)).Err()
}

func (c *Client) Assignments(ctx context.Context, specialistID string) (int64, error) {
	val, err := c.client.Get(ctx, assignmentKey(specialistID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}
