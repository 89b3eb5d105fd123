package pkggraph

// BuildEnvironment describes the target platform/configuration a graph
// query is being evaluated against (spec.md §4.6's condition engine
// input).
type BuildEnvironment struct {
	Platform      string
	Configuration string
	IsHost        bool
	EnabledTraits map[string]bool
}

// Satisfied reports whether cond holds under env, per spec.md §4.6: each
// axis is satisfied if unset, or if it matches/subsets env's value. A nil
// Condition is always satisfied.
func Satisfied(cond *Condition, env BuildEnvironment) bool {
	if cond == nil {
		return true
	}

	if len(cond.Platforms) > 0 && !containsString(cond.Platforms, env.Platform) {
		return false
	}

	if cond.Configuration != "" && cond.Configuration != env.Configuration {
		return false
	}

	if len(cond.Traits) > 0 {
		for _, t := range cond.Traits {
			if !env.EnabledTraits[t] {
				return false
			}
		}
	}

	return true
}

// SatisfiedByAnyTraitConfiguration reports whether cond could ever be
// satisfied given some enabled-trait configuration drawn from possible.
// Only the trait axis is considered. Assemble's pruning step does not call
// it; it uses satisfiedForPruning instead.
func SatisfiedByAnyTraitConfiguration(cond *Condition, possible []map[string]bool) bool {
	if cond == nil || len(cond.Traits) == 0 {
		return true
	}
	for _, enabled := range possible {
		ok := true
		for _, t := range cond.Traits {
			if !enabled[t] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
