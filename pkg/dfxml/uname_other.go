//go:build !(linux || darwin || freebsd)

package dfxml

import "runtime"

func uname() (sysname, release, version string) {
	return runtime.GOOS, "unknown", "unknown"
}
