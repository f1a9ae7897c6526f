package catalog

import (
	"sort"
	"sync"
)

// Store owns the action and recipe catalogs plus the fixed-role slots. The
// crafting worker reads it while the UI mutates it; a run in flight must
// degrade gracefully (skip names that stop resolving), never fault.
type Store struct {
	mu      sync.RWMutex
	actions map[string]Action
	recipes map[string]Recipe
	fixed   map[Role]Action
}

// NewStore creates an empty store with every fixed slot unconfigured at its
// default cooldown.
func NewStore() *Store {
	fixed := make(map[Role]Action, len(Roles))
	for _, r := range Roles {
		fixed[r] = Action{Cooldown: r.defaultCooldown()}
	}
	return &Store{
		actions: make(map[string]Action),
		recipes: make(map[string]Recipe),
		fixed:   fixed,
	}
}

// AddAction registers a new action. Returns false if the name is taken.
func (s *Store) AddAction(name string, a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.actions[name]; exists {
		return false
	}
	s.actions[name] = a
	return true
}

// ModifyAction updates an action, optionally renaming it. Renaming fails if
// the new name is already taken.
func (s *Store) ModifyAction(currentName, newName string, a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.actions[currentName]; !exists {
		return false
	}
	if newName != currentName {
		if _, exists := s.actions[newName]; exists {
			return false
		}
		delete(s.actions, currentName)
	}
	s.actions[newName] = a
	return true
}

// RemoveAction deletes an action. Recipes referencing it keep the dangling
// name; resolution happens at execution time.
func (s *Store) RemoveAction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.actions[name]; !exists {
		return false
	}
	delete(s.actions, name)
	return true
}

// Action resolves a name against the live catalog.
func (s *Store) Action(name string) (Action, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.actions[name]
	return a, ok
}

// ActionNames returns all action names, sorted.
func (s *Store) ActionNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.actions))
	for n := range s.actions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AddRecipe registers a new recipe. Returns false if the name is taken.
func (s *Store) AddRecipe(name string, r Recipe) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.recipes[name]; exists {
		return false
	}
	s.recipes[name] = r.clone()
	return true
}

// ModifyRecipe updates a recipe, optionally renaming it.
func (s *Store) ModifyRecipe(currentName, newName string, r Recipe) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.recipes[currentName]; !exists {
		return false
	}
	if newName != currentName {
		if _, exists := s.recipes[newName]; exists {
			return false
		}
		delete(s.recipes, currentName)
	}
	s.recipes[newName] = r.clone()
	return true
}

// RemoveRecipe deletes a recipe.
func (s *Store) RemoveRecipe(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.recipes[name]; !exists {
		return false
	}
	delete(s.recipes, name)
	return true
}

// Recipe returns a copy of the named recipe.
func (s *Store) Recipe(name string) (Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipes[name]
	if !ok {
		return Recipe{}, false
	}
	return r.clone(), true
}

// RecipeNames returns all recipe names, sorted.
func (s *Store) RecipeNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.recipes))
	for n := range s.recipes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetFixedShortcut rebinds a fixed-role slot, keeping its cooldown.
func (s *Store) SetFixedShortcut(role Role, shortcut string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.fixed[role]
	a.Shortcut = shortcut
	s.fixed[role] = a
}

// Fixed returns the action bound to a fixed-role slot.
func (s *Store) Fixed(role Role) Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixed[role]
}
