package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Wire format of data.json. Durations are stored in seconds; fixed actions
// persist only the shortcut, their cooldowns are built in. Unknown keys are
// ignored on load and missing keys fall back to defaults.
type fileData struct {
	Actions      map[string]actionData `json:"actions"`
	Recipes      map[string]recipeData `json:"recipes"`
	FixedActions map[string]fixedData  `json:"fixed_actions"`
}

type actionData struct {
	Shortcut string  `json:"shortcut"`
	Duration float64 `json:"duration"`
}

type recipeData struct {
	Actions          []string `json:"actions"`
	UseFood          bool     `json:"use_food"`
	UsePotion        bool     `json:"use_potion"`
	UseHQIngredients bool     `json:"use_hq_ingredients"`
}

type fixedData struct {
	Shortcut string `json:"shortcut"`
}

// Save writes the catalog to path with indentation, matching the format Load
// reads back.
func Save(path string, s *Store) error {
	s.mu.RLock()
	data := fileData{
		Actions:      make(map[string]actionData, len(s.actions)),
		Recipes:      make(map[string]recipeData, len(s.recipes)),
		FixedActions: make(map[string]fixedData, len(s.fixed)),
	}
	for name, a := range s.actions {
		data.Actions[name] = actionData{Shortcut: a.Shortcut, Duration: a.Cooldown.Seconds()}
	}
	for name, r := range s.recipes {
		data.Recipes[name] = recipeData{
			Actions:          append([]string(nil), r.Steps...),
			UseFood:          r.UseFood,
			UsePotion:        r.UsePotion,
			UseHQIngredients: r.UseHQIngredients,
		}
	}
	for _, role := range Roles {
		data.FixedActions[role.String()] = fixedData{Shortcut: s.fixed[role].Shortcut}
	}
	s.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}
	return nil
}

// Load reads a catalog file into s. A missing file is not an error: the store
// keeps its defaults. Entries with negative cooldowns are skipped rather than
// failing the whole load.
func Load(path string, s *Store) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("loading catalog: %w", err)
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, a := range data.Actions {
		if a.Duration < 0 {
			continue
		}
		s.actions[name] = Action{
			Shortcut: a.Shortcut,
			Cooldown: time.Duration(a.Duration * float64(time.Second)),
		}
	}
	for name, r := range data.Recipes {
		s.recipes[name] = Recipe{
			Steps:            append([]string(nil), r.Actions...),
			UseFood:          r.UseFood,
			UsePotion:        r.UsePotion,
			UseHQIngredients: r.UseHQIngredients,
		}
	}
	for _, role := range Roles {
		if fd, ok := data.FixedActions[role.String()]; ok {
			a := s.fixed[role]
			a.Shortcut = fd.Shortcut
			s.fixed[role] = a
		}
	}
	return nil
}
