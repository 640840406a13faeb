//go:build debug

package invariant

// Strict is true in debug builds (built with -tags debug): a violated
// invariant panics immediately instead of attempting recovery.
const Strict = true
