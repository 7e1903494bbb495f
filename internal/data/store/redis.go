package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

const (
	jobKeyPrefix  = "veristudy:job:"
	packKeyPrefix = "veristudy:pack:"
	packIndexKey  = "veristudy:packs"
)

// NewRedisClient builds a go-redis client from REDIS_URL.
func NewRedisClient(log *logger.Logger) (*redis.Client, error) {
	rawURL := os.Getenv("REDIS_URL")
	if rawURL == "" {
		rawURL = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Connected to redis")
	return client, nil
}

// RedisJobStore stores each job as one JSON value per key. Update is a
// read-modify-write; each job id is written by exactly one pipeline run, so
// per-key last-write-wins is sufficient.
type RedisJobStore struct {
	rdb *redis.Client
	log *logger.Logger
	ttl time.Duration
}

func NewRedisJobStore(rdb *redis.Client, log *logger.Logger) *RedisJobStore {
	return &RedisJobStore{
		rdb: rdb,
		log: log.With("store", "RedisJobStore"),
		ttl: 24 * time.Hour,
	}
}

func (s *RedisJobStore) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	raw, err := s.rdb.Get(ctx, jobKeyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job domain.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &job, nil
}

func (s *RedisJobStore) Set(ctx context.Context, job *domain.Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, jobKeyPrefix+job.ID, raw, s.ttl).Err()
}

func (s *RedisJobStore) Update(ctx context.Context, jobID string, fields map[string]any) (*domain.Job, error) {
	job, err := s.Get(ctx, jobID)
	if err != nil || job == nil {
		return nil, err
	}
	if err := applyJobFields(job, fields); err != nil {
		return nil, err
	}
	if err := s.Set(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// RedisPackStore stores each pack as one JSON value plus a sorted-set index
// ordered by creation time for listing.
type RedisPackStore struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewRedisPackStore(rdb *redis.Client, log *logger.Logger) *RedisPackStore {
	return &RedisPackStore{rdb: rdb, log: log.With("store", "RedisPackStore")}
}

func (s *RedisPackStore) Get(ctx context.Context, packID string) (*domain.Pack, error) {
	raw, err := s.rdb.Get(ctx, packKeyPrefix+packID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pack domain.Pack
	if err := json.Unmarshal(raw, &pack); err != nil {
		return nil, fmt.Errorf("decode pack %s: %w", packID, err)
	}
	return &pack, nil
}

func (s *RedisPackStore) Set(ctx context.Context, pack *domain.Pack) error {
	raw, err := json.Marshal(pack)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, packKeyPrefix+pack.ID, raw, 0)
	pipe.ZAdd(ctx, packIndexKey, redis.Z{
		Score:  float64(pack.CreatedAt.UnixMilli()),
		Member: pack.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisPackStore) List(ctx context.Context) ([]*domain.Pack, error) {
	ids, err := s.rdb.ZRevRange(ctx, packIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Pack, 0, len(ids))
	for _, id := range ids {
		pack, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if pack == nil {
			// index entry outlived its value; skip rather than fail the list
			s.log.Warn("Pack index entry without value", "pack_id", id)
			continue
		}
		out = append(out, pack)
	}
	return out, nil
}
