// Package buildinfo exposes the version, commit, and build metadata
// baked into the helios binary.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time via -ldflags. When a value is not stamped, init
// fills what it can from the module's VCS build settings.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	Dirty     = false
)

var startTime = time.Now()

func init() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if GitCommit == "unknown" {
				GitCommit = shortCommit(s.Value)
			}
		case "vcs.time":
			if BuildTime == "unknown" {
				BuildTime = s.Value
			}
		case "vcs.modified":
			Dirty = s.Value == "true"
		}
	}
}

func shortCommit(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// commitLabel is the commit with a dirty-tree marker when the working
// tree had uncommitted changes at build time.
func commitLabel() string {
	if Dirty {
		return GitCommit + "+dirty"
	}
	return GitCommit
}

// Info returns build and runtime metadata as a map, for the version
// command and the /api/version endpoint.
func Info() map[string]string {
	info := map[string]string{
		"version":    Version,
		"git_commit": commitLabel(),
		"build_time": BuildTime,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     Uptime().String(),
	}
	return info
}

// Uptime returns the duration since process start.
func Uptime() time.Duration {
	return time.Since(startTime).Truncate(time.Second)
}

// String returns a one-line summary for logs and startup banners.
func String() string {
	return fmt.Sprintf("Helios %s (%s) built %s", Version, commitLabel(), BuildTime)
}
