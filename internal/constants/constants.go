package constants

import "time"

// Game & Persistence
const (
	// GameWindowTitle is the title of the window all input and capture target.
	GameWindowTitle = "FINAL FANTASY XIV"

	// SaveFile holds the action/recipe catalog next to the binary.
	SaveFile = "data.json"

	// TemplateDir contains per-language reference images.
	TemplateDir = "image_templates"

	// CraftWindowTemplate is the reference image for the crafting log panel.
	CraftWindowTemplate = "craft_window.png"

	// DefaultLanguage selects which template/title set to use.
	DefaultLanguage = "en"
)

// Detection
const (
	// MatchThreshold is the minimum normalized cross-correlation score
	// accepted as a template match.
	MatchThreshold = 0.8

	// QuickRejectTolerance is the color distance allowed by the
	// sliding-window prefilter before a full score is computed.
	QuickRejectTolerance = 60.0

	// UIPollInterval is the wait between crafting-log detection attempts.
	UIPollInterval = 1 * time.Second

	// DefaultUIDetectAttempts bounds the wait-for-UI retry loop. Exhaustion
	// is fatal to the run.
	DefaultUIDetectAttempts = 30
)

// Crafting cycle
const (
	// ConfirmChainLength is how many confirm presses dismiss the game's
	// trailing dialog chain before a craft can start.
	ConfirmChainLength = 3

	// FoodBuffDuration and PotionBuffDuration are how long the respective
	// consumables last before they must be reapplied.
	FoodBuffDuration   = 30 * time.Minute
	PotionBuffDuration = 15 * time.Minute
)

// Fixed-role default cooldowns, applied when the catalog file does not
// override them.
const (
	ConfirmCooldown    = 500 * time.Millisecond
	CancelCooldown     = 500 * time.Millisecond
	FoodCooldown       = 2 * time.Second
	PotionCooldown     = 2 * time.Second
	RecipeBookCooldown = 1 * time.Second
	MoveCooldown       = 500 * time.Millisecond
)
