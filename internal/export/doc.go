// Package export renders the feature table for hand-off: CSV for model
// training and flattened rows for CLI display.
package export
