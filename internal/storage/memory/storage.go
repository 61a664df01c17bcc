package memory

import (
	"context"
	"sync"

	"github.com/nitzanf/fakergame-go/internal/model"
	"github.com/nitzanf/fakergame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	// tasks per category; a task's id is its slice index + 1
	tasks map[model.Category][]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		tasks: make(map[model.Category][]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) AddTask(ctx context.Context, category model.Category, text string) (model.TaskID, error) {
	if _, ok := model.ParseCategory(string(category)); !ok {
		return 0, model.ErrUnknownCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[category] = append(s.tasks[category], text)
	return model.TaskID(len(s.tasks[category])), nil
}

func (s *Storage) GetTask(ctx context.Context, category model.Category, id model.TaskID) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.tasks[category]
	if id < 1 || int(id) > len(list) {
		return nil, model.ErrTaskNotFound
	}
	return &model.Task{ID: id, Category: category, Text: list[id-1]}, nil
}

func (s *Storage) CountTasks(ctx context.Context, category model.Category) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks[category]), nil
}
