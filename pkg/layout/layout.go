// Package layout holds every game-specific constant: process names, byte
// signatures, pointer offsets, flag names and map paths. A game update
// should only need changes here.
package layout

// =================================
// Process
// =================================
const (
	ProcessName = "Solar-Win64-Shipping"
	ModuleName  = "Solar-Win64-Shipping.exe"
)

// =================================
// Signatures
// =================================
const (
	// lea rdx, [FNamePool]
	NamePoolPattern      = "74 09 48 8D 15 ?? ?? ?? ?? EB 16"
	NamePoolDisplacement = 0x5
	NamePoolAnchor       = 0x9

	// mov rbx, [GWorld]
	WorldPattern      = "0F 2E ?? 74 ?? 48 8B 1D ?? ?? ?? ?? 48 85 DB 74"
	WorldDisplacement = 0x8
	WorldAnchor       = 0xC
)

// =================================
// Pointer chains, rooted at the world global
// =================================
var (
	GameStateOffsets     = []uint64{0x0, 0x128, 0x5E0}
	SaveFlagCountOffsets = []uint64{0x0, 0x188, 0x208}
	SaveFlagArrayOffsets = []uint64{0x0, 0x188, 0x200}
	CurrentMapOffsets    = []uint64{0x0, 0x428, 0x0}
)

// MapPathUnits is the UTF-16 buffer length read for the current map path.
const MapPathUnits = 35

// =================================
// Game state values
// =================================
const (
	GameStateLoading uint8 = 3
	GameStatePlaying uint8 = 4
)

// =================================
// Map paths
// =================================
const (
	IntroCutsceneMap = "/Game/Maps/Cutscenes/Opening_Master"
	TitleMenuMap     = "/Game/Maps/TitleNMainMenu"
)

// =================================
// Bad ending
// =================================
const (
	// DisableSavingMarker appears in the flag written just before the bad ending.
	DisableSavingMarker = "DISABLE_SAVING"
	// BadEndingFlagCount is the save-flag count at which the bad ending arms.
	BadEndingFlagCount int32 = 2
	// BadEndingAbandonCount disarms the bad ending when exceeded.
	BadEndingAbandonCount int32 = 10
)

// BossKillFlags are written when a boss remnant is destroyed.
var BossKillFlags = []string{
	"Vale_Starseed_Remnant",
	"Woods_OldCity_Remnant",
	"Woods_IronRootBasin_Remnant",
	"Shroom_GhostCoppice_Remnant",
	"Beach_AcidLagoon_SwordRemnant",
	"Shroom_Overflow_Remnant",
}

// EyeFlags are written when a static remnant of an eye is cleared.
var EyeFlags = []string{
	"Vale_Starseed_StaticRemnantB",
	"Vale_Starseed_StaticRemnantC",
	"Vale_StaticRemnantD",
	"Woods_Cliffside_StaticRemnantA",
	"Woods_ClockTower_StaticRemnantA",
	"Woods_OldCity_StaticRemnantA",
	"Woods_OldCity_StaticRemnantB",
	"Woods_ForestAltar_StaticRemnantA",
	"Woods_IronRootHighlands_StaticRemnantA",
	"Woods_IronRootHighlands_StaticRemnantB",
	"Woods_IronRootBasin_StaticRemnantA",
	"Shroom_MagmaOutlets_StaticRemnantB",
	"Shroom_GhostCoppice_StaticRemnantA",
	"Shroom_Cathedral_StaticRemnantA",
	"Shroom_Archives_StaticRemnantA",
	"Shroom_MagmaOutlets_StaticRemnantA",
	"Beach_AcidLagoon_StaticRemnantA",
	"Beach_Pavilion_StaticRemnantA",
	"Beach_Frigate_StaticRemnantA",
	"Beach_PalaceGrounds_StaticRemnantA",
	"Beach_PalaceUnderGround_StaticRemnantA",
	"Shroom_Overflow_StaticRemnantA",
	"Shroom_FungusTowers_StaticRemnantA",
	"Shroom_ShatteredPeak_StaticRemnantA",
	"Shroom_Graveyard_MinorRemnantA",
	"Shroom_Overflow_StaticRemnantB",
}
