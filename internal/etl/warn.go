package etl

import (
	"fmt"
	"log"
	"sync"
)

// Warning is a non-fatal condition found while exporting. Row is the
// source row index, or -1 when the condition is not tied to a row.
type Warning struct {
	Dataset string `json:"dataset"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Row < 0 {
		return fmt.Sprintf("%s: %s", w.Dataset, w.Message)
	}
	return fmt.Sprintf("%s: row %d: %s", w.Dataset, w.Row, w.Message)
}

// Warnings collects warnings for one dataset and logs each as it arrives.
// A nil *Warnings discards everything.
type Warnings struct {
	Dataset string

	mu    sync.Mutex
	items []Warning
}

func NewWarnings(dataset string) *Warnings {
	return &Warnings{Dataset: dataset}
}

// Warnf records a warning for row.
func (w *Warnings) Warnf(row int, format string, args ...any) {
	if w == nil {
		return
	}
	wr := Warning{Dataset: w.Dataset, Row: row, Message: fmt.Sprintf(format, args...)}
	log.Printf("export: warning: %s", wr)

	w.mu.Lock()
	w.items = append(w.items, wr)
	w.mu.Unlock()
}

// List returns a copy of the collected warnings.
func (w *Warnings) List() []Warning {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Warning(nil), w.items...)
}

func (w *Warnings) Len() int {
	if w == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}
