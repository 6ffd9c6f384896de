package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisKeyPrefix = "cobranza:session:"
	defaultRedisTTL       = 24 * time.Hour
)

// RedisConfig describes the connection for the Redis-backed store.
type RedisConfig struct {
	Address  string        `envconfig:"ADDRESS" split_words:"true" required:"true"`
	Password string        `envconfig:"PASSWORD" split_words:"true"`
	DB       int           `envconfig:"DB" split_words:"true" default:"0"`
	TTL      time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

type RedisOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithRedisMaxHistory(max int) RedisOption {
	return func(s *RedisStore) {
		s.maxHistory = max
	}
}

// RedisStore persists sessions as JSON blobs with a TTL, one key per
// thread.
type RedisStore struct {
	client     *redis.Client
	keyPrefix  string
	ttl        time.Duration
	maxHistory int
}

func NewRedisStore(ctx context.Context, cfg RedisConfig, opts ...RedisOption) (*RedisStore, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}

	store := &RedisStore{
		client:     client,
		keyPrefix:  defaultRedisKeyPrefix,
		ttl:        ttl,
		maxHistory: defaultMaxHistory,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Load(ctx context.Context, threadID string) (*Session, error) {
	key, err := s.key(threadID)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	sess := new(Session)
	if err := json.Unmarshal(raw, sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session loaded from redis: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}
	key, err := s.key(sess.ThreadID)
	if err != nil {
		return err
	}
	sess.TrimHistory(s.maxHistory)

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, threadID string) error {
	key, err := s.key(threadID)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) key(threadID string) (string, error) {
	if strings.TrimSpace(threadID) == "" {
		return "", ErrInvalidThread
	}
	return s.keyPrefix + threadID, nil
}
