package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nitzanf/fakergame-go/internal/model"
	"github.com/nitzanf/fakergame-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) AddTask(ctx context.Context, category model.Category, text string) (model.TaskID, error) {
	if _, ok := model.ParseCategory(string(category)); !ok {
		return 0, model.ErrUnknownCategory
	}

	id, err := s.client.Incr(ctx, taskCountKey(category)).Result()
	if err != nil {
		return 0, err
	}

	if err := s.client.Set(ctx, taskKey(category, model.TaskID(id)), text, 0).Err(); err != nil {
		return 0, err
	}
	return model.TaskID(id), nil
}

func (s *Storage) GetTask(ctx context.Context, category model.Category, id model.TaskID) (*model.Task, error) {
	text, err := s.client.Get(ctx, taskKey(category, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTaskNotFound
		}
		return nil, err
	}
	return &model.Task{ID: id, Category: category, Text: text}, nil
}

func (s *Storage) CountTasks(ctx context.Context, category model.Category) (int, error) {
	count, err := s.client.Get(ctx, taskCountKey(category)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}
