package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/solarsplit/pkg/autosplit"
)

const toggleHelp = "commands: boss, bad, eye (toggle a split rule), show, help"

// readToggles applies one command per input line to live until r ends.
// Each change is picked up by the next tick.
func readToggles(r io.Reader, live *autosplit.LiveSettings, out io.Writer, logger hclog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if cmd == "" {
			continue
		}
		s := live.Settings()
		switch cmd {
		case "boss", "b":
			s.SplitOnBossKills = !s.SplitOnBossKills
		case "bad", "ending":
			s.SplitOnBadEnding = !s.SplitOnBadEnding
		case "eye", "e":
			s.SplitOnEyeComplete = !s.SplitOnEyeComplete
		case "show", "s":
			fmt.Fprintln(out, describeSettings(s))
			continue
		case "help", "h", "?":
			fmt.Fprintln(out, toggleHelp)
			continue
		default:
			fmt.Fprintf(out, "unknown command %q; %s\n", cmd, toggleHelp)
			continue
		}
		live.Store(s)
		logger.Info("🔧 Split rules changed",
			"boss_kills", s.SplitOnBossKills,
			"bad_ending", s.SplitOnBadEnding,
			"eye_complete", s.SplitOnEyeComplete)
		fmt.Fprintln(out, describeSettings(s))
	}
	if err := scanner.Err(); err != nil {
		logger.Debug("Stopped reading commands", "error", err)
	}
}

func describeSettings(s autosplit.Settings) string {
	return fmt.Sprintf("boss kills: %s  bad ending: %s  eye complete: %s",
		onOff(s.SplitOnBossKills), onOff(s.SplitOnBadEnding), onOff(s.SplitOnEyeComplete))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
