package redis

import (
	"fmt"

	"github.com/nitzanf/fakergame-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "fakergame"

// taskKey returns the Redis key for one task
func taskKey(category model.Category, id model.TaskID) string {
	return fmt.Sprintf("%s:task:%s:%d", keyPrefix, category, id)
}

// taskCountKey returns the Redis key for a category's id counter
func taskCountKey(category model.Category) string {
	return fmt.Sprintf("%s:task:%s:count", keyPrefix, category)
}
