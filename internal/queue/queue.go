// Package queue hands validated receipt records from the notification handler
// to the asynchronous email step through a Redis list. The record is
// serialized with the same schema the validator checks, so the consumer can
// re-decode it strictly before acting on it.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"iodono/rt-register/internal/models"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// ConnectionInfo holds the Redis connection parameters.
type ConnectionInfo struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a Redis connection and verifies it with a ping.
func Connect(ctx context.Context, info ConnectionInfo) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     info.Addr,
		Password: info.Password,
		DB:       info.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// Envelope wraps a receipt record on its way through the queue.
type Envelope struct {
	ID         string         `json:"id"`
	EnqueuedAt time.Time      `json:"enqueuedAt"`
	RT         *models.RTData `json:"rt"`
}

// Queue is a Redis-list-backed work queue for receipt records.
type Queue struct {
	rdb *goredis.Client
	key string
}

// New creates a queue on the given Redis list key.
func New(rdb *goredis.Client, key string) *Queue {
	return &Queue{
		rdb: rdb,
		key: key,
	}
}

// Enqueue serializes the record into an envelope and pushes it onto the list.
func (q *Queue) Enqueue(ctx context.Context, rt *models.RTData) error {
	env := Envelope{
		ID:         uuid.NewString(),
		EnqueuedAt: time.Now().UTC(),
		RT:         rt,
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling receipt envelope failed: %w", err)
	}

	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueueing receipt %s failed: %w", env.ID, err)
	}

	log.WithFields(logrus.Fields{
		"id":  env.ID,
		"iuv": rt.DatiPagamento.IdentificativoUnivocoVersamento,
	}).Info("Enqueued receipt for email delivery")
	return nil
}

// Dequeue blocks for up to timeout waiting for the next envelope. A nil
// envelope with a nil error means the timeout elapsed with nothing to do.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Envelope, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeueing receipt failed: %w", err)
	}
	// BRPop returns the key followed by the popped value.
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(res))
	}

	return DecodeEnvelope([]byte(res[1]))
}

// DecodeEnvelope re-decodes a serialized envelope with the exact-shape rule:
// unknown fields anywhere in the payload are rejected.
func DecodeEnvelope(payload []byte) (*Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()

	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding receipt envelope failed: %w", err)
	}
	return &env, nil
}
