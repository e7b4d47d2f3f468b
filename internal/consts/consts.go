// Package consts holds build-mode flags shared by internal/assert and the
// rest of the module.
package consts

// ModeDebug gates invariant checks and diagnostic prints that are too
// expensive, or too noisy, to run in a release build.
const ModeDebug = false
