package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"rsimaster/internal/model"
)

const redisKeyPrefix = "journal:"

// RedisStoreConfig configures the Redis-backed journal store.
type RedisStoreConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each day record as a JSON document under
// journal:<date>. A SET is atomic on the server, so saves are
// all-or-nothing; like the other stores it assumes a single logical
// writer per journal.
type RedisStore struct {
	client *goredis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisStoreConfig) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Load(ctx context.Context, date string) (*model.JournalDay, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+date).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: load %s: %w", date, err)
	}

	var day model.JournalDay
	if err := json.Unmarshal([]byte(data), &day); err != nil {
		return nil, false, fmt.Errorf("redis: decode %s: %w", date, err)
	}
	return &day, true, nil
}

func (s *RedisStore) Save(ctx context.Context, day *model.JournalDay) error {
	data, err := json.MarshalIndent(day, "", "  ")
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", day.Date, err)
	}
	// Day records are kept indefinitely; no TTL.
	if err := s.client.Set(ctx, redisKeyPrefix+day.Date, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: save %s: %w", day.Date, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
