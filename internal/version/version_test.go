package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestApply(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version, Commit = "", ""
	apply(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	if Version != "v1.4.0" {
		t.Errorf("Version = %s, want v1.4.0", Version)
	}
	if Commit != "0123456-dirty" {
		t.Errorf("Commit = %s, want 0123456-dirty", Commit)
	}
}

func TestApply_DevelKeepsLdflags(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version, Commit = "", "abc1234"
	apply(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

	if Version != "" {
		t.Errorf("Version = %q, want empty for (devel)", Version)
	}
	if Commit != "abc1234" {
		t.Errorf("Commit = %s, want abc1234", Commit)
	}
}

func TestUserAgent(t *testing.T) {
	if ua := UserAgent(); !strings.HasPrefix(ua, "heatzy-cli/"+Version) {
		t.Errorf("UserAgent() = %s", ua)
	}
	if !strings.Contains(Full(), Commit) {
		t.Errorf("Full() = %s should contain commit", Full())
	}
}
