// Package queue stores district call queues as Redis lists.
package queue

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/resilience"
)

// Options configures the Redis connection. URL takes precedence over the
// host fields.
type Options struct {
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

func (o Options) redisOptions() (*redis.Options, error) {
	if o.URL != "" {
		opt, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, eris.Wrap(err, "queue: parse redis url")
		}
		return opt, nil
	}
	host := o.Host
	if host == "" {
		host = "localhost"
	}
	port := o.Port
	if port == 0 {
		port = 6379
	}
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: o.Password,
		DB:       o.DB,
	}, nil
}

// RedisSink replaces district queues inside one MULTI/EXEC transaction.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink wraps an existing client.
func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

// Connect opens a client and pings it, retrying transient failures.
func Connect(ctx context.Context, o Options) (*RedisSink, error) {
	opt, err := o.redisOptions()
	if err != nil {
		return nil, err
	}
	zap.L().Info("queue: connecting to redis", zap.String("addr", opt.Addr), zap.Int("db", opt.DB))

	client := redis.NewClient(opt)
	err = resilience.Do(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, eris.Wrap(err, "queue: ping redis")
	}
	return &RedisSink{client: client}, nil
}

// ReplaceQueues pushes every batch onto the front of its list and trims the
// list to the batch size, all in a single transaction.
func (s *RedisSink) ReplaceQueues(ctx context.Context, batches map[string][]string) error {
	names := make([]string, 0, len(batches))
	for name, records := range batches {
		if len(records) > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	for _, name := range names {
		if old, err := s.client.LLen(ctx, name).Result(); err == nil {
			zap.L().Debug("queue: replacing list",
				zap.String("queue", name),
				zap.Int64("old_size", old),
				zap.Int("new_size", len(batches[name])),
			)
		}
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, name := range names {
			records := batches[name]
			values := make([]any, len(records))
			for i, r := range records {
				values[i] = r
			}
			pipe.LPush(ctx, name, values...)
			pipe.LTrim(ctx, name, 0, int64(len(records)-1))
		}
		return nil
	})
	if err != nil {
		return eris.Wrap(err, "queue: exec replace transaction")
	}
	return nil
}

// Queue returns the content of a queue, head first.
func (s *RedisSink) Queue(ctx context.Context, name string) ([]string, error) {
	records, err := s.client.LRange(ctx, name, 0, -1).Result()
	if err != nil {
		return nil, eris.Wrapf(err, "queue: read %s", name)
	}
	return records, nil
}

// Close closes the underlying client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
