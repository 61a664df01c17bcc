package model

import "errors"

// Common errors used across the application
var (
	// Join errors
	ErrUsernameTaken  = errors.New("username is already taken")
	ErrGameInProgress = errors.New("game is already in progress")
	ErrPlayerNotFound = errors.New("player not found")

	// Task corpus errors
	ErrTaskNotFound    = errors.New("task not found")
	ErrNoTasks         = errors.New("no tasks in category")
	ErrUnknownCategory = errors.New("unknown category")
)
