package game

// Continue returns Rules that treat prefix as already played, so a search rooted
// at the empty history explores the position reached by prefix.
func Continue(rules Rules, prefix []Action) Rules {
	if len(prefix) == 0 {
		return rules
	}
	return &continued{rules: rules, prefix: append([]Action(nil), prefix...)}
}

type continued struct {
	rules  Rules
	prefix []Action
}

func (c *continued) full(history []Action) []Action {
	full := make([]Action, 0, len(c.prefix)+len(history))
	full = append(full, c.prefix...)
	return append(full, history...)
}

func (c *continued) LegalActions(history []Action) ([]Action, error) {
	return c.rules.LegalActions(c.full(history))
}

func (c *continued) Score(history []Action) (float64, error) {
	return c.rules.Score(c.full(history))
}

func (c *continued) Maximizer() Player {
	return c.rules.Maximizer()
}
