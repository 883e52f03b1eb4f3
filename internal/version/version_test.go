package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.NotEmpty(t, info.Version)
	assert.LessOrEqual(t, len(info.GitCommit), 7)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Empty(t, info.Renderer)
}

func TestFillFromBuildInfo(t *testing.T) {
	tests := []struct {
		name string
		in   Info
		bi   debug.BuildInfo
		want Info
	}{
		{
			name: "placeholders replaced",
			in:   Info{Version: "dev", GitCommit: "none", BuildDate: "unknown"},
			bi: debug.BuildInfo{
				Main: debug.Module{Version: "v0.3.1"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abcdef123456"},
					{Key: "vcs.time", Value: "2025-01-02T03:04:05Z"},
				},
			},
			want: Info{Version: "v0.3.1", GitCommit: "abcdef123456", BuildDate: "2025-01-02T03:04:05Z"},
		},
		{
			name: "ldflags win",
			in:   Info{Version: "1.0.0", GitCommit: "1234567", BuildDate: "today"},
			bi: debug.BuildInfo{
				Main:     debug.Module{Version: "v0.3.1"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffff"}},
			},
			want: Info{Version: "1.0.0", GitCommit: "1234567", BuildDate: "today"},
		},
		{
			name: "devel module version ignored",
			in:   Info{Version: "dev", GitCommit: "none", BuildDate: "unknown"},
			bi:   debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Info{Version: "dev", GitCommit: "none", BuildDate: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			fillFromBuildInfo(&got, &tt.bi)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "1.2.3", GitCommit: "abc1234", BuildDate: "now", GoVersion: "go1.25", Platform: "linux/amd64"}
	assert.Equal(t, "carbonwatch 1.2.3 (commit: abc1234, built: now, go1.25 linux/amd64)", info.String())

	info.Renderer = "2.1.0"
	assert.Contains(t, info.String(), "\nrenderer: 2.1.0")
}

func TestInfoJSON(t *testing.T) {
	info := Info{Version: "1.2.3", Renderer: "2.1.0"}

	s, err := info.JSON()
	require.NoError(t, err)

	var parsed Info
	require.NoError(t, json.Unmarshal([]byte(s), &parsed))
	assert.Equal(t, info, parsed)
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "abc1234", shortCommit("abc1234def5678"))
	assert.Equal(t, "abc", shortCommit("abc"))
	assert.Equal(t, "", shortCommit(""))
}
