package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps preferences in Redis: a string key per scope for the
// theme and a hash of JSON-encoded presets.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "qrstudio"}
}

// OpenRedis parses a redis:// URL, connects and pings.
func OpenRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client), nil
}

func (r *RedisStore) themeKey(scope string) string   { return r.prefix + ":" + scope + ":theme" }
func (r *RedisStore) presetsKey(scope string) string { return r.prefix + ":" + scope + ":presets" }

func (r *RedisStore) Theme(ctx context.Context, scope string) (Theme, error) {
	v, err := r.client.Get(ctx, r.themeKey(scope)).Result()
	if errors.Is(err, redis.Nil) {
		return ThemeLight, nil
	}
	if err != nil {
		return ThemeLight, err
	}
	return ParseTheme(v)
}

func (r *RedisStore) SetTheme(ctx context.Context, scope string, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return r.client.Set(ctx, r.themeKey(scope), string(t), 0).Err()
}

func (r *RedisStore) Presets(ctx context.Context, scope string) (map[string]Preset, error) {
	raw, err := r.client.HGetAll(ctx, r.presetsKey(scope)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Preset, len(raw))
	for name, v := range raw {
		var p Preset
		if err := json.Unmarshal([]byte(v), &p); err != nil {
			return nil, fmt.Errorf("decode preset %q: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}

func (r *RedisStore) Preset(ctx context.Context, scope, name string) (Preset, error) {
	v, err := r.client.HGet(ctx, r.presetsKey(scope), name).Result()
	if errors.Is(err, redis.Nil) {
		return Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	if err != nil {
		return Preset{}, err
	}
	var p Preset
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		return Preset{}, fmt.Errorf("decode preset %q: %w", name, err)
	}
	return p, nil
}

func (r *RedisStore) SavePreset(ctx context.Context, scope, name string, p Preset) error {
	name, err := CheckName(name)
	if err != nil {
		return err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.presetsKey(scope), name, b).Err()
}

func (r *RedisStore) DeletePreset(ctx context.Context, scope, name string) error {
	n, err := r.client.HDel(ctx, r.presetsKey(scope), name).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
