// Package numeric provides the stateless numeric primitives used by the
// analysis pipeline: derivatives, smoothing filters, peak detection with
// prominences, linear regression, and time-to-sample-index mapping.
//
// All functions operate on plain float64 slices and never mutate their
// inputs unless documented otherwise.
package numeric
