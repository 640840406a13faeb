// Package invariant reports programming-error-class failures:
// response ordering mismatches, mutation acks for ids the mirror
// never offered, unknown tags in a closed dispatch. These are never
// used for expected, data-dependent failures (a full bank, a request
// against an uninitialized slot) — those are plain bool returns.
package invariant

import "github.com/kjbaird/oscbank/internal/telemetry"

// Check reports a violation when cond is false. In a debug build
// (built with -tags debug) it panics via the default logger's Fatal;
// in a release build it logs at Error and returns, leaving the caller
// to drop the offending operation and continue.
func Check(cond bool, format string, args ...interface{}) {
	if cond {
		return
	}
	if Strict {
		telemetry.Default().Fatal(format, args...)
		return
	}
	telemetry.Default().Error(format, args...)
}
