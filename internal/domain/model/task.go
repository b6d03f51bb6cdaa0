package model

import (
	"time"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// ParseTaskStatus validates a raw status value. Both transitions between
// pending and completed are allowed; there is no terminal state.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	switch TaskStatus(raw) {
	case StatusPending, StatusCompleted:
		return TaskStatus(raw), true
	}
	return "", false
}

// Task due dates are stored as zero-padded YYYY-MM-DD strings so that
// lexicographic order matches calendar order. ValidateDay parses at the
// domain boundary; storage and comparison stay on the string form.
const DayFormat = "2006-01-02"

func ValidateDay(s string) bool {
	t, err := time.Parse(DayFormat, s)
	return err == nil && t.Format(DayFormat) == s
}

// Today returns the current calendar date in stored form.
func Today() string {
	return time.Now().Format(DayFormat)
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"` // YYYY-MM-DD
	Priority    string     `json:"priority"` // free-form label: low/medium/high
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
