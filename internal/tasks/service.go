// Package tasks provides the task source: a random, category-scoped pick
// over the stored corpus. Avoiding repeats within a game is the caller's
// concern; this service only guarantees a uniform draw.
package tasks

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nitzanf/fakergame-go/internal/dependencies/random"
	"github.com/nitzanf/fakergame-go/internal/model"
	"github.com/nitzanf/fakergame-go/internal/storage"
)

// Service provides task corpus access
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
}

// New creates a new task service
func New(storage storage.Storage, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  random,
		logger:  logger,
	}
}

// Pick returns a uniformly random task from the category's corpus
func (s *Service) Pick(ctx context.Context, category model.Category) (*model.Task, error) {
	count, err := s.storage.CountTasks(ctx, category)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, model.ErrNoTasks
	}
	id := model.TaskID(s.random.Intn(count) + 1)
	return s.storage.GetTask(ctx, category, id)
}

// Add appends one task to a category
func (s *Service) Add(ctx context.Context, category model.Category, text string) (model.TaskID, error) {
	return s.storage.AddTask(ctx, category, text)
}

// Count returns the number of tasks in a category
func (s *Service) Count(ctx context.Context, category model.Category) (int, error) {
	return s.storage.CountTasks(ctx, category)
}

// LoadFromFile imports a corpus file into storage. Each line is
// CATEGORY<TAB>task text; blank lines and lines starting with # are skipped.
// Returns the number of tasks loaded.
func (s *Service) LoadFromFile(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	loaded := 0
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, body, ok := strings.Cut(text, "\t")
		if !ok {
			return loaded, fmt.Errorf("line %d: missing tab separator", line)
		}
		category, ok := model.ParseCategory(strings.TrimSpace(name))
		if !ok {
			return loaded, fmt.Errorf("line %d: %w: %q", line, model.ErrUnknownCategory, name)
		}
		if _, err := s.storage.AddTask(ctx, category, strings.TrimSpace(body)); err != nil {
			return loaded, err
		}
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, err
	}

	s.logger.Info("task corpus loaded",
		slog.String("path", path),
		slog.Int("tasks", loaded),
	)
	return loaded, nil
}

// Interface for dependency injection
type ServiceInterface interface {
	Pick(ctx context.Context, category model.Category) (*model.Task, error)
	Add(ctx context.Context, category model.Category, text string) (model.TaskID, error)
	Count(ctx context.Context, category model.Category) (int, error)
	LoadFromFile(ctx context.Context, path string) (int, error)
}

var _ ServiceInterface = (*Service)(nil)
