package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/solarsplit/pkg/autosplit"
)

func TestReadToggles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  autosplit.Settings
	}{
		{"no input keeps defaults", "", autosplit.DefaultSettings()},
		{"boss off", "boss\n", autosplit.Settings{}},
		{"bad ending on", "bad\n", autosplit.Settings{SplitOnBossKills: true, SplitOnBadEnding: true}},
		{"eye toggled twice", "eye\nE\n", autosplit.DefaultSettings()},
		{"show and unknown change nothing", "show\nwhat\n\n", autosplit.DefaultSettings()},
		{"all toggled", " b \nending\ne\n", autosplit.Settings{SplitOnBadEnding: true, SplitOnEyeComplete: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := autosplit.NewLiveSettings(autosplit.DefaultSettings())
			var out bytes.Buffer
			readToggles(strings.NewReader(tt.input), live, &out, hclog.NewNullLogger())
			if got := live.Settings(); got != tt.want {
				t.Errorf("settings = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadTogglesOutput(t *testing.T) {
	live := autosplit.NewLiveSettings(autosplit.DefaultSettings())
	var out bytes.Buffer
	readToggles(strings.NewReader("show\nnope\n"), live, &out, hclog.NewNullLogger())

	got := out.String()
	if !strings.Contains(got, "boss kills: on  bad ending: off  eye complete: off") {
		t.Errorf("show output = %q", got)
	}
	if !strings.Contains(got, `unknown command "nope"`) {
		t.Errorf("unknown output = %q", got)
	}
}
