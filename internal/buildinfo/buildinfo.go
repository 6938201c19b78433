// Package buildinfo stamps the running binary's version into its log
// output, the ambient "where did this build come from" concern every
// long-running daemon in the corpus carries.
package buildinfo

import "runtime/debug"

// Version returns the module version embedded by the Go toolchain at
// build time ("(devel)" for an un-tagged local build), or "unknown" if
// no build info is available at all (e.g. a test binary).
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	return info.Main.Version
}
