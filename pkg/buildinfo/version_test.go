package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
		},
	}

	tests := []struct {
		name string
		in   Info
		want Info
	}{
		{
			"defaults filled",
			Info{Version: "dev", Commit: "none", Date: "unknown"},
			Info{Version: "v0.3.1", Commit: "abc123", Date: "2024-05-01T10:00:00Z"},
		},
		{
			"ldflags win",
			Info{Version: "v1.0.0", Commit: "fff", Date: "today"},
			Info{Version: "v1.0.0", Commit: "fff", Date: "today"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fromBuildInfo(tt.in, bi); got != tt.want {
				t.Errorf("fromBuildInfo = %+v, want %+v", got, tt.want)
			}
		})
	}

	devel := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}
	if got := fromBuildInfo(Info{Version: "dev"}, devel); got.Version != "dev" {
		t.Errorf("Version = %q, want dev for a devel build", got.Version)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "{{.Name}} version") {
		t.Errorf("Template() = %q", Template())
	}
}
