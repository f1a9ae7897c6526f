// Package catalog holds the shared Action/Recipe catalog and the nine
// fixed-role shortcuts. The store is read by the crafting worker while the UI
// edits it, so every accessor is safe for concurrent use.
package catalog

import (
	"time"

	"github.com/SolarShards/XIVAutoCrafter/internal/constants"
)

// Action is a named input primitive: one key combination plus the cooldown to
// wait after sending it. An empty shortcut means the action is unconfigured
// and executing it is a no-op.
type Action struct {
	Shortcut string
	Cooldown time.Duration
}

// Configured reports whether the action has a shortcut bound.
func (a Action) Configured() bool {
	return a.Shortcut != ""
}

// Role identifies one of the fixed-purpose action slots used by the crafting
// cycle itself, independent of any recipe.
type Role int

const (
	RoleConfirm Role = iota
	RoleCancel
	RoleFood
	RolePotion
	RoleRecipeBook
	RoleUp
	RoleDown
	RoleLeft
	RoleRight
)

// Roles lists every fixed slot in persistence order.
var Roles = []Role{
	RoleConfirm, RoleCancel, RoleFood, RolePotion, RoleRecipeBook,
	RoleUp, RoleDown, RoleLeft, RoleRight,
}

// String returns the persisted key for the role.
func (r Role) String() string {
	switch r {
	case RoleConfirm:
		return "confirm_action"
	case RoleCancel:
		return "cancel_action"
	case RoleFood:
		return "food_action"
	case RolePotion:
		return "potion_action"
	case RoleRecipeBook:
		return "recipe_book_action"
	case RoleUp:
		return "up_action"
	case RoleDown:
		return "down_action"
	case RoleLeft:
		return "left_action"
	case RoleRight:
		return "right_action"
	default:
		return "unknown"
	}
}

// defaultCooldown returns the built-in cooldown for a fixed slot.
func (r Role) defaultCooldown() time.Duration {
	switch r {
	case RoleConfirm:
		return constants.ConfirmCooldown
	case RoleCancel:
		return constants.CancelCooldown
	case RoleFood:
		return constants.FoodCooldown
	case RolePotion:
		return constants.PotionCooldown
	case RoleRecipeBook:
		return constants.RecipeBookCooldown
	default:
		return constants.MoveCooldown
	}
}
