package autosplit

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/solarsplit/pkg/fname"
	"github.com/provide-io/solarsplit/pkg/layout"
	"github.com/provide-io/solarsplit/pkg/memory"
	"github.com/provide-io/solarsplit/pkg/pointer"
	"github.com/provide-io/solarsplit/pkg/resolver"
	"github.com/provide-io/solarsplit/pkg/watcher"
)

// Session is everything the splitter knows about one attached game
// process. It is created after the roots resolve and dropped when the
// process exits; nothing carries over to the next attach.
type Session struct {
	mem    memory.Reader
	logger hclog.Logger

	gameStatePath pointer.Path
	flagCountPath pointer.Path
	mapPath       pointer.Path
	names         *fname.Resolver

	GameState  *watcher.Watcher[uint8]
	FlagCount  *watcher.Watcher[int32]
	Map        *watcher.Watcher[string]
	NewestFlag *watcher.Watcher[string]

	// StartOnGainControl is armed on the intro cutscene map and fires the
	// run start on the next loading → playing transition.
	StartOnGainControl bool
	// SplitOnLoseControl is armed by the bad ending flag sequence.
	SplitOnLoseControl bool
	// BossSplitsTriggered counts boss splits since the run started.
	BossSplitsTriggered int

	ticks uint64
}

// NewSession builds the pointer paths and watchers for roots.
func NewSession(mem memory.Reader, roots resolver.Roots, logger hclog.Logger) *Session {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Session{
		mem:           mem,
		logger:        logger,
		gameStatePath: pointer.New(roots.World, layout.GameStateOffsets...),
		flagCountPath: pointer.New(roots.World, layout.SaveFlagCountOffsets...),
		mapPath:       pointer.New(roots.World, layout.CurrentMapOffsets...),
		names: fname.New(mem, pointer.New(roots.World, layout.SaveFlagArrayOffsets...),
			roots.NamePool, logger.Named("fname")),
		GameState:  watcher.New[uint8](),
		FlagCount:  watcher.New[int32](),
		Map:        watcher.New[string](),
		NewestFlag: watcher.New[string](),
	}
}

// Tick refreshes every watcher and then evaluates the split rules.
func (s *Session) Tick(settings Settings, t Timer) {
	s.Refresh()
	s.Evaluate(settings, t)
	s.ticks++
}

// Ticks returns how many ticks the session has run.
func (s *Session) Ticks() uint64 {
	return s.ticks
}

// NameStats exposes the flag-name cache counters.
func (s *Session) NameStats() fname.Stats {
	return s.names.Stats()
}

// Refresh reads every tracked value once. Each watcher is updated exactly
// once, with a failed read when the value is unavailable.
func (s *Session) Refresh() {
	state, err := s.gameStatePath.U8(s.mem)
	s.GameState.UpdateErr(state, err)

	count, err := s.flagCountPath.I32(s.mem)
	s.FlagCount.UpdateErr(count, err)

	mapName, err := s.mapPath.WideString(s.mem, layout.MapPathUnits)
	s.Map.UpdateErr(mapName, err)

	if p, ok := s.FlagCount.Pair(); ok {
		s.NewestFlag.Update(s.names.Newest(p.Current))
	} else {
		s.NewestFlag.Update("", false)
	}

	s.trace()
}

func (s *Session) trace() {
	if p, ok := s.Map.Pair(); ok && p.Changed() {
		s.logger.Debug("🗺️ Map changed", "from", p.Old, "to", p.Current)
	}
	if p, ok := s.GameState.Pair(); ok && p.Changed() {
		s.logger.Debug("🎮 Game state changed", "from", p.Old, "to", p.Current)
	}
	if p, ok := s.NewestFlag.Pair(); ok && p.Changed() {
		count, _ := s.FlagCount.Current()
		s.logger.Debug("🚩 New save flag", "name", p.Current, "count", count)
	}
	if s.logger.IsTrace() {
		state, _ := s.GameState.Current()
		count, _ := s.FlagCount.Current()
		s.logger.Trace("tick",
			"n", s.ticks,
			"game_state", state,
			"save_flag_count", count,
			"names", fmt.Sprintf("%+v", s.names.Stats()),
		)
	}
}
