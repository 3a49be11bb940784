package autosplit

import (
	"strings"

	"github.com/provide-io/solarsplit/pkg/layout"
	"github.com/provide-io/solarsplit/pkg/timer"
)

// Timer is the control surface the rules drive.
type Timer = timer.Timer

var (
	bossKillFlags = toSet(layout.BossKillFlags)
	eyeFlags      = toSet(layout.EyeFlags)
)

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Evaluate runs the split rules against the current watcher pairs in their
// fixed order. A watcher without a pair skips the rules that need it.
//
// The boss, eye and bad ending rules are independent, so one tick can
// split more than once if a flag name were in more than one set.
func (s *Session) Evaluate(settings Settings, t Timer) {
	atTitle := s.mapRules(t)
	s.startRule(t)
	s.loadRemoval(atTitle, t)

	if settings.SplitOnBossKills {
		s.bossRule(t)
	}
	if settings.SplitOnEyeComplete && s.BossSplitsTriggered < len(layout.BossKillFlags) {
		s.eyeRule(t)
	}
	if settings.SplitOnBadEnding {
		s.badEndingRule(t)
	}
}

// mapRules arms the run start on the intro cutscene and resets when the
// cutscene is entered. It reports whether the title menu is loaded.
func (s *Session) mapRules(t Timer) bool {
	p, ok := s.Map.Pair()
	if !ok {
		return false
	}
	switch p.Current {
	case layout.IntroCutsceneMap:
		s.StartOnGainControl = true
		if p.Changed() {
			s.logger.Info("🎬 Intro cutscene entered, resetting")
			t.Reset()
		}
	case layout.TitleMenuMap:
		return true
	}
	return false
}

func (s *Session) startRule(t Timer) {
	if !s.StartOnGainControl {
		return
	}
	p, ok := s.GameState.Pair()
	if !ok || p.Old != layout.GameStateLoading || p.Current != layout.GameStatePlaying {
		return
	}
	s.BossSplitsTriggered = 0
	s.StartOnGainControl = false
	s.SplitOnLoseControl = false
	s.logger.Info("🏃 Player gained control, starting run")
	t.Start()
}

// loadRemoval pauses game time unless the game is loading or playing
// outside the title menu. It calls the timer every tick.
func (s *Session) loadRemoval(atTitle bool, t Timer) {
	playing := false
	if p, ok := s.GameState.Pair(); ok {
		playing = p.Current == layout.GameStateLoading || p.Current == layout.GameStatePlaying
	}
	if !playing || atTitle {
		t.PauseGameTime()
	} else {
		t.ResumeGameTime()
	}
}

// newFlag returns the newest flag name when it changed this tick.
func (s *Session) newFlag() (string, bool) {
	p, ok := s.NewestFlag.Pair()
	if !ok || !p.Changed() {
		return "", false
	}
	return p.Current, true
}

func (s *Session) bossRule(t Timer) {
	name, ok := s.newFlag()
	if !ok {
		return
	}
	if _, boss := bossKillFlags[name]; boss {
		s.BossSplitsTriggered++
		s.logger.Info("⚔️ Boss killed, splitting", "flag", name, "boss_splits", s.BossSplitsTriggered)
		t.Split()
	}
}

func (s *Session) eyeRule(t Timer) {
	name, ok := s.newFlag()
	if !ok {
		return
	}
	if _, eye := eyeFlags[name]; eye {
		s.logger.Info("👁️ Eye remnant cleared, splitting", "flag", name)
		t.Split()
	}
}

func (s *Session) badEndingRule(t Timer) {
	if p, ok := s.NewestFlag.Pair(); ok && p.Changed() && strings.Contains(p.Old, layout.DisableSavingMarker) {
		if c, ok := s.FlagCount.Pair(); ok && c.Current == layout.BadEndingFlagCount {
			s.logger.Info("🌑 Bad ending armed")
			s.SplitOnLoseControl = true
		}
	}
	if !s.SplitOnLoseControl {
		return
	}

	if p, ok := s.GameState.Pair(); ok && p.Old == layout.GameStatePlaying && p.Current == layout.GameStateLoading {
		s.SplitOnLoseControl = false
		s.logger.Info("🌑 Player lost control, splitting for bad ending")
		t.Split()
	}

	if p, ok := s.Map.Pair(); ok && p.Current == layout.TitleMenuMap {
		s.disarmBadEnding("title menu")
	}
	if c, ok := s.FlagCount.Pair(); ok && c.Current > layout.BadEndingAbandonCount {
		s.disarmBadEnding("save flag count")
	}
}

func (s *Session) disarmBadEnding(reason string) {
	if s.SplitOnLoseControl {
		s.logger.Debug("Bad ending disarmed", "reason", reason)
	}
	s.SplitOnLoseControl = false
}
