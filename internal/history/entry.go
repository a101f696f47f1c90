// Package history provides upgrade history tracking with BoltDB.
package history

import (
	"fmt"
	"time"
)

// Operation represents the type of recorded operation.
type Operation string

const (
	OpUpgrade    Operation = "upgrade"
	OpCacheClear Operation = "cache-clear"
)

// Entry represents a single operation in the history.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation Operation `json:"operation"`
	Root      string    `json:"root"`   // Project directory
	Package   string    `json:"package"` // Base package name
	Client    string    `json:"client"` // Package manager client used
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// NewEntry creates a new history entry.
func NewEntry(op Operation, root, pkg, client string) *Entry {
	return &Entry{
		ID:        generateID(),
		Timestamp: time.Now(),
		Operation: op,
		Root:      root,
		Package:   pkg,
		Client:    client,
	}
}

// MarkSuccess marks the entry as successful.
func (e *Entry) MarkSuccess() {
	e.Success = true
}

// MarkFailed marks the entry as failed with an error message.
func (e *Entry) MarkFailed(err error) {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
}

// generateID generates a unique ID for the entry.
func generateID() string {
	return time.Now().Format("20060102150405.000000")
}

// FormatTime returns a human-readable timestamp.
func (e *Entry) FormatTime() string {
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

// Summary returns a brief summary of the operation.
func (e *Entry) Summary() string {
	status := "success"
	if !e.Success {
		status = "failed"
	}

	if e.Package == "" {
		return fmt.Sprintf("%s %s (%s)", e.FormatTime(), e.Operation, status)
	}

	target := e.To
	if target == "" {
		target = "latest"
	}
	return fmt.Sprintf("%s %s %s -> %s [%s] (%s)",
		e.FormatTime(), e.Operation, e.Package, target, e.Client, status)
}
