package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hackboard/internal/platform/config"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// ErrEmpty is returned by Pop when the wait timed out without a message.
var ErrEmpty = errors.New("queue is empty")

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	_, err := RDB.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}

// Queue is a FIFO of JSON messages kept in a Redis list.
// Producers LPUSH, consumers BRPOP.
type Queue struct {
	rdb  *redis.Client
	name string
}

func New(rdb *redis.Client, name string) *Queue {
	return &Queue{rdb: rdb, name: name}
}

func (q *Queue) Name() string { return q.name }

func (q *Queue) Push(ctx context.Context, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("queue.Push marshal: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("queue.Push %s: %w", q.name, err)
	}
	return nil
}

// Requeue pushes a raw message back so it is retried after everything already waiting.
func (q *Queue) Requeue(ctx context.Context, raw []byte) error {
	if err := q.rdb.LPush(ctx, q.name, raw).Err(); err != nil {
		return fmt.Errorf("queue.Requeue %s: %w", q.name, err)
	}
	return nil
}

// Pop blocks up to timeout for the next message.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("queue.Pop %s: %w", q.name, err)
	}
	// BRPOP returns [queueName, value]
	if len(res) < 2 || res[1] == "" {
		return nil, ErrEmpty
	}
	return []byte(res[1]), nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}
