package main

import (
	"runtime/debug"
	"testing"
)

func settings(kv ...string) []debug.BuildSetting {
	var out []debug.BuildSetting
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, debug.BuildSetting{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

func TestVCSStamp(t *testing.T) {
	tests := []struct {
		name     string
		settings []debug.BuildSetting
		want     string
		ok       bool
	}{
		{
			name:     "commit and time",
			settings: settings("vcs.revision", "0123456789abcdef", "vcs.time", "2026-03-01T12:00:00+02:00", "vcs.modified", "false"),
			want:     "2026-03-01T10:00:00Z (0123456)",
			ok:       true,
		},
		{
			name:     "dirty tree",
			settings: settings("vcs.revision", "abc", "vcs.time", "2026-03-01T10:00:00Z", "vcs.modified", "true"),
			want:     "2026-03-01T10:00:00Z (abc, dirty)",
			ok:       true,
		},
		{
			name:     "time only",
			settings: settings("vcs.time", "2026-03-01T10:00:00Z"),
			want:     "2026-03-01T10:00:00Z",
			ok:       true,
		},
		{
			name:     "no vcs info",
			settings: settings("GOOS", "linux"),
		},
		{
			name:     "bad time",
			settings: settings("vcs.time", "yesterday"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := vcsStamp(tt.settings)
			if got != tt.want || ok != tt.ok {
				t.Errorf("vcsStamp = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
