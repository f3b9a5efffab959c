package asynclog

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink pushes each line onto a redis list so other processes can tail
// the sandbox log.
type RedisSink struct {
	client  *redis.Client
	key     string
	maxLen  int64
	timeout time.Duration
	owned   bool
}

// RedisOptions configures a RedisSink
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
	// MaxLen caps the list length; 0 keeps every line.
	MaxLen  int64
	Timeout time.Duration
}

// NewRedisSink connects to redis and verifies the connection
func NewRedisSink(ctx context.Context, opts RedisOptions) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Addr, err)
	}

	s := NewRedisSinkWithClient(client, opts.Key, opts.MaxLen)
	s.owned = true
	if opts.Timeout > 0 {
		s.timeout = opts.Timeout
	}
	return s, nil
}

// NewRedisSinkWithClient uses an existing client; Close leaves it open
func NewRedisSinkWithClient(client *redis.Client, key string, maxLen int64) *RedisSink {
	if key == "" {
		key = "glsandbox:log"
	}
	return &RedisSink{
		client:  client,
		key:     key,
		maxLen:  maxLen,
		timeout: time.Second,
	}
}

func (s *RedisSink) WriteLine(line string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, line)
	if s.maxLen > 0 {
		pipe.LTrim(ctx, s.key, -s.maxLen, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis push: %w", err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
