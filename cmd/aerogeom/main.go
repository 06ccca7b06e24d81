// Command aerogeom loads aircraft definitions, queries their geometry and
// exports them to CAD and mesh formats.
package main

import (
	"fmt"
	"os"

	"github.com/chazu/aerogeom/pkg/status"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the status code of its kind. Errors from flag
// parsing and other untagged failures exit with the internal error code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return status.Code(err)
}
