// Package strategy defines the pluggable classification strategies that
// turn scanned file metadata into triage suggestions.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fenilsonani/desk-triage/internal/scanner"
)

// Action is the triage decision for one file
type Action string

const (
	ActionDelete Action = "delete"
	ActionMove   Action = "move"
	ActionKeep   Action = "keep"
)

// NormalizeAction coerces arbitrary strategy output to a valid action.
// Anything outside the three known values becomes keep, never propagated.
func NormalizeAction(raw string) Action {
	switch Action(raw) {
	case ActionDelete, ActionMove, ActionKeep:
		return Action(raw)
	default:
		return ActionKeep
	}
}

// Suggestion is one classification decision for one file
type Suggestion struct {
	FilePath   string  `json:"file_path" yaml:"file_path"`
	Action     Action  `json:"action" yaml:"action"`
	Reason     string  `json:"reason" yaml:"reason"`
	Category   string  `json:"category" yaml:"category"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// CategoryIndex maps a category label to the file names assigned to it.
// Used for reporting and merge bookkeeping only, never for execution.
type CategoryIndex map[string][]string

// Merge folds another index into this one additively: lists concatenate
// per key, new keys are created on first sight
func (ci CategoryIndex) Merge(other CategoryIndex) {
	for label, names := range other {
		ci[label] = append(ci[label], names...)
	}
}

// Labels returns the category labels in sorted order for stable output
func (ci CategoryIndex) Labels() []string {
	labels := make([]string, 0, len(ci))
	for label := range ci {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Result is the outcome of analyzing one batch of files
type Result struct {
	Suggestions []Suggestion  `json:"suggestions" yaml:"suggestions"`
	Categories  CategoryIndex `json:"categories" yaml:"categories"`
}

// EmptyResult returns a result with no suggestions and an empty index
func EmptyResult() *Result {
	return &Result{
		Suggestions: []Suggestion{},
		Categories:  CategoryIndex{},
	}
}

// Strategy converts a batch of file records into triage suggestions.
// Implementations must be safe to call repeatedly within a run.
type Strategy interface {
	// Analyze classifies the batch. existingCategories carries labels seen
	// in earlier batches so implementations can keep naming consistent.
	Analyze(ctx context.Context, files []scanner.FileRecord, existingCategories []string) (*Result, error)

	// Available is a cheap, side-effect-free pre-check consulted before
	// Analyze is attempted.
	Available() bool

	// Name identifies the strategy for logging
	Name() string
}

// Error wraps an irrecoverable analysis failure (network, parse, timeout)
type Error struct {
	Strategy string
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Strategy, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrAuth marks a terminal authentication failure (HTTP 401/403); callers
// must not retry after seeing it
var ErrAuth = errors.New("authentication failed")

// IsAuthError reports whether err stems from rejected credentials
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuth)
}
