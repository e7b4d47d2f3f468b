// Package assert provides debug-build-only invariant checks.
package assert

import (
	"fmt"

	"github.com/bloeys/glyphbrush/internal/consts"
)

// T panics with msg (formatted with args) if check is false and the
// module was built with consts.ModeDebug. It is a no-op otherwise.
func T(check bool, msg string, args ...any) {
	if consts.ModeDebug && !check {
		// Sprintf is done inside the assert because putting it as the argument to 'msg' blocks
		// the function from getting fully optimized out on a release build (and slower in general)
		panic("Assert failed: " + fmt.Sprintf(msg, args...))
	}
}
