// Package aggregate turns a movie's ordered daily-record history into a
// fixed-width feature vector with strict window-completeness gating.
package aggregate
