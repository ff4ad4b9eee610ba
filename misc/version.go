// Package misc carries build information injected by the linker.
package misc

import "runtime/debug"

// set with -ldflags "-X docconv/misc.version=... -X docconv/misc.gitHash=..."
var (
	appName = "docconv"
	version = "dev"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns hash set at link time or, when absent, the VCS revision
// recorded by the go toolchain.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
