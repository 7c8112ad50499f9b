package main

import "runtime/debug"

// version is set at build time via -ldflags.
var version = "dev"

// buildVersionString returns the version, preferring the linker-set value
// and falling back to module build info for go install builds.
func buildVersionString() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
