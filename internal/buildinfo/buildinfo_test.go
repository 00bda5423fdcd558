package buildinfo

import (
	"strings"
	"testing"
)

func TestInfoKeys(t *testing.T) {
	info := Info()
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch", "uptime"} {
		if info[k] == "" {
			t.Errorf("info[%q] is empty", k)
		}
	}
}

func TestCommitLabelMarksDirtyTree(t *testing.T) {
	origCommit, origDirty := GitCommit, Dirty
	t.Cleanup(func() { GitCommit, Dirty = origCommit, origDirty })

	GitCommit, Dirty = "abc123def456", false
	if got := commitLabel(); got != "abc123def456" {
		t.Errorf("clean label = %q", got)
	}

	Dirty = true
	if got := commitLabel(); got != "abc123def456+dirty" {
		t.Errorf("dirty label = %q", got)
	}
	if !strings.Contains(String(), "+dirty") {
		t.Errorf("summary missing dirty marker: %q", String())
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef0123"); got != "0123456789ab" {
		t.Errorf("shortCommit = %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("short input changed: %q", got)
	}
}
