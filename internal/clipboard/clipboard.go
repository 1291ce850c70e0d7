// Package clipboard provides cross-platform clipboard support.
package clipboard

import (
	"errors"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard backend was found.
var ErrUnavailable = errors.New("clipboard not available")

var (
	mu        sync.Mutex
	writer    = clipboard.WriteAll
	isDefault = true
)

// Write copies text to the system clipboard.
func Write(text string) error {
	if !Available() {
		return ErrUnavailable
	}
	mu.Lock()
	w := writer
	mu.Unlock()
	return w(text)
}

// Available checks if clipboard functionality is available.
func Available() bool {
	mu.Lock()
	defer mu.Unlock()
	if !isDefault {
		return true
	}
	return !clipboard.Unsupported
}

// SetWriter replaces the clipboard backend and returns a func restoring the
// previous one. Tests use it to capture copied text.
func SetWriter(w func(string) error) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev, prevDefault := writer, isDefault
	writer, isDefault = w, false
	return func() {
		mu.Lock()
		defer mu.Unlock()
		writer, isDefault = prev, prevDefault
	}
}
