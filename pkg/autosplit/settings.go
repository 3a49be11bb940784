package autosplit

import "sync/atomic"

// Settings are the user toggles, read once at the start of every tick.
type Settings struct {
	SplitOnBossKills   bool `env:"SOLARSPLIT_SPLIT_ON_BOSS_KILLS" envDefault:"true"`
	SplitOnBadEnding   bool `env:"SOLARSPLIT_SPLIT_ON_BAD_ENDING" envDefault:"false"`
	SplitOnEyeComplete bool `env:"SOLARSPLIT_SPLIT_ON_EYE_COMPLETE" envDefault:"false"`
}

// DefaultSettings splits on boss kills only.
func DefaultSettings() Settings {
	return Settings{SplitOnBossKills: true}
}

// SettingsSource supplies the toggles for the next tick.
type SettingsSource interface {
	Settings() Settings
}

// StaticSettings is a SettingsSource that never changes.
type StaticSettings Settings

func (s StaticSettings) Settings() Settings {
	return Settings(s)
}

// LiveSettings can be changed from any goroutine; the new toggles apply
// from the next tick.
type LiveSettings struct {
	v atomic.Pointer[Settings]
}

// NewLiveSettings starts with initial.
func NewLiveSettings(initial Settings) *LiveSettings {
	l := &LiveSettings{}
	l.Store(initial)
	return l
}

// Store replaces the toggles.
func (l *LiveSettings) Store(s Settings) {
	l.v.Store(&s)
}

func (l *LiveSettings) Settings() Settings {
	return *l.v.Load()
}
