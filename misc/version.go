// Package misc keeps information about program version.
package misc

import (
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/vainilie/imabi/misc.version=..."
var (
	version = "development"
	gitHash = ""
)

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git hash of the source tree program was built from.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
