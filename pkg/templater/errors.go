package templater

import (
	"errors"
	"fmt"
)

// ErrEmptySelection indicates the column selection selects no columns.
var ErrEmptySelection = errors.New("empty column selection")

// ErrNoAssets indicates the asset filter matched no input assets.
var ErrNoAssets = errors.New("no matching assets")

// ErrWorksheetNotFound indicates the template worksheet does not exist.
var ErrWorksheetNotFound = errors.New("worksheet not found")

// RunError represents a failure at a stage of template execution.
type RunError struct {
	Stage string // "load", "ingest", "translate", "save"
	Asset string // asset path for ingest failures, otherwise empty
	Err   error
}

func (e *RunError) Error() string {
	if e.Asset != "" {
		return fmt.Sprintf("template run failed at %s (asset %q): %v", e.Stage, e.Asset, e.Err)
	}
	return fmt.Sprintf("template run failed at %s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func runError(stage, asset string, err error) *RunError {
	return &RunError{Stage: stage, Asset: asset, Err: err}
}
