package storage

import (
	"context"

	"github.com/nitzanf/fakergame-go/internal/model"
)

// Storage defines the interface for task corpus persistence.
//
// Task ids within a category are assigned contiguously starting at 1 and
// tasks are never deleted, so a uniform pick over [1, CountTasks] is a
// uniform pick over the corpus.
type Storage interface {
	// AddTask appends a task to a category and returns its id
	AddTask(ctx context.Context, category model.Category, text string) (model.TaskID, error)

	// GetTask fetches one task by category and id
	GetTask(ctx context.Context, category model.Category, id model.TaskID) (*model.Task, error)

	// CountTasks returns the number of tasks in a category
	CountTasks(ctx context.Context, category model.Category) (int, error)
}
