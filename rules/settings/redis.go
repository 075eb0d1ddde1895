package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rule-orchestrator/rules"
)

const redisKeyPrefix = "rule_settings:"

var _ Source = (*RedisSource)(nil)

// RedisSource reads per-rule settings from a redis hash per kind, letting
// operators flip rules without a redeploy. Hash fields:
//
//	enabled   "true" / "false" (missing means enabled)
//	condition CEL expression (optional)
//	params    JSON object of tuning values (optional)
//
// A kind with no hash at all gets the enabled default.
type RedisSource struct {
	client *redis.Client
}

// NewRedisSource connects to redis and verifies the connection.
func NewRedisSource(url string) (*RedisSource, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSource{client: client}, nil
}

// Setting loads the setting hash for kind.
func (s *RedisSource) Setting(ctx context.Context, kind rules.Kind) (Setting, error) {
	fields, err := s.client.HGetAll(ctx, redisKeyPrefix+kind.String()).Result()
	if err != nil {
		return Setting{}, fmt.Errorf("failed to load settings for kind %q: %w", kind, err)
	}

	if len(fields) == 0 {
		return defaultSetting(), nil
	}

	setting := defaultSetting()
	if raw, ok := fields["enabled"]; ok {
		enabled, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			return Setting{}, fmt.Errorf("invalid enabled flag for kind %q: %w", kind, parseErr)
		}
		setting.Enabled = enabled
	}
	if raw, ok := fields["condition"]; ok {
		setting.Condition = raw
	}
	if raw, ok := fields["params"]; ok && raw != "" {
		if unmarshalErr := json.Unmarshal([]byte(raw), &setting.Params); unmarshalErr != nil {
			return Setting{}, fmt.Errorf("invalid params for kind %q: %w", kind, unmarshalErr)
		}
	}

	return setting, nil
}

// Save writes a setting hash for kind. Used by deployment tooling and
// integration tests.
func (s *RedisSource) Save(ctx context.Context, kind rules.Kind, setting Setting) error {
	fields := map[string]any{
		"enabled":   strconv.FormatBool(setting.Enabled),
		"condition": setting.Condition,
	}
	if setting.Params != nil {
		params, err := json.Marshal(setting.Params)
		if err != nil {
			return fmt.Errorf("failed to marshal params for kind %q: %w", kind, err)
		}
		fields["params"] = string(params)
	}

	return s.client.HSet(ctx, redisKeyPrefix+kind.String(), fields).Err()
}

// Close releases the redis connection.
func (s *RedisSource) Close() error {
	return s.client.Close()
}
