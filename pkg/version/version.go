// Package version holds build metadata, set with -ldflags at release time.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.1.0"
	GitCommit = "development"
	BuildDate = "unknown"
)

// String returns a one-line summary used by the REPL banner.
func String() string {
	return fmt.Sprintf("napkin %s (%s, %s/%s)", Version, GitCommit, runtime.GOOS, runtime.GOARCH)
}
