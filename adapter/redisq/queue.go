// Package redisq pushes ingested article URLs onto a Redis list so
// downstream consumers (enrichment, indexing) can pick them up.
package redisq

import (
	"context"

	"github.com/go-redis/redis/v8"
)

const DefaultKey = "ingest:queue"

type Queue struct {
	client *redis.Client
	key    string
}

func New(addr, key string) *Queue {
	if key == "" {
		key = DefaultKey
	}
	return &Queue{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    key,
	}
}

func (q *Queue) Published(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	vals := make([]interface{}, len(urls))
	for i, u := range urls {
		vals[i] = u
	}
	return q.client.LPush(ctx, q.key, vals...).Err()
}

func (q *Queue) Close() error { return q.client.Close() }
