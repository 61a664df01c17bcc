package model

// Category identifies one of the task categories players can choose
type Category string

const (
	CategoryPoint  Category = "POINT"  // hold up fingers
	CategoryNumber Category = "NUMBER" // answer with a number
	CategoryRaise  Category = "RAISE"  // raise hand / object
)

// Categories lists every valid category
var Categories = []Category{CategoryPoint, CategoryNumber, CategoryRaise}

// Prefix returns the one-byte wire prefix for the category ('P', 'N' or 'R')
func (c Category) Prefix() byte {
	return c[0]
}

// CategoryFromPrefix resolves a wire prefix back to a category
func CategoryFromPrefix(prefix byte) (Category, bool) {
	for _, c := range Categories {
		if c.Prefix() == prefix {
			return c, true
		}
	}
	return "", false
}

// ParseCategory validates a category name from the wire
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// TaskID identifies a task within its category
type TaskID int64

// Task is one entry of the task corpus. Text is opaque to the server.
type Task struct {
	ID       TaskID
	Category Category
	Text     string
}
