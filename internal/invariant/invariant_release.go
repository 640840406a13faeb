//go:build !debug

package invariant

// Strict is false in release builds: a violated invariant logs and
// the caller falls back to its best-effort recovery (typically:
// return early, drop the offending operation).
const Strict = false
