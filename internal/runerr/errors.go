package runerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for run-failure classification. Everything below the two
// fatal kinds is recovered locally and surfaced only through structured logs.
var (
	// ErrFetch marks a transient per-date retrieval failure. The date is
	// skipped after retries; the run continues.
	ErrFetch = errors.New("fetch error")
	// ErrParse marks a row-level extraction failure. The row is dropped.
	ErrParse = errors.New("parse error")
	// ErrSystemicBlock marks a tripped circuit breaker. The run halts with
	// the checkpoint preserved for manual resume.
	ErrSystemicBlock = errors.New("systemic block")
	// ErrCheckpointCorrupt marks an unreadable checkpoint. The operator must
	// pass an explicit resume date or restart the range.
	ErrCheckpointCorrupt = errors.New("checkpoint corrupt")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation string, err error) error {
	detail := buildDetail(component, operation)
	if marker == nil {
		marker = ErrFetch
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err should abort the whole run rather than the
// current date.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSystemicBlock) || errors.Is(err, ErrCheckpointCorrupt)
}

func buildDetail(component, operation string) string {
	parts := make([]string, 0, 2)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
