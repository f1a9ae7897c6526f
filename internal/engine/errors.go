package engine

import "errors"

// Sentinel errors surfaced by Start and by the run loop. Per-key transmission
// failures are not errors; they are absorbed by the dispatcher and logged.
var (
	ErrUnknownRecipe            = errors.New("unknown recipe")
	ErrInvalidQuantity          = errors.New("quantity must be a positive integer")
	ErrMissingBuffConfiguration = errors.New("recipe requires a buff action with no shortcut configured")
	ErrUIDetectionTimeout       = errors.New("crafting log never became visible")
)
