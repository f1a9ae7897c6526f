package catalog

// Recipe is an ordered crafting rotation. Steps hold action *names*, not
// values: edits to an action propagate to every recipe referencing it, and a
// deleted action leaves a dangling name that is skipped at execution time.
type Recipe struct {
	Steps            []string
	UseFood          bool
	UsePotion        bool
	UseHQIngredients bool
}

// clone returns a copy whose Steps slice is independent of the original, so
// a recipe handed out of the store cannot be mutated behind its back.
func (r Recipe) clone() Recipe {
	out := r
	out.Steps = append([]string(nil), r.Steps...)
	return out
}
