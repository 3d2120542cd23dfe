package tokenizer

import "strings"

// synonymClusters broaden a query token into related corpus vocabulary. They
// are applied to queries only; indexed chunk tokens stay untouched so synonym
// policy can change without a corpus rebuild.
var synonymClusters = []struct {
	triggers []string
	adds     []string
}{
	{
		triggers: []string{"leadership", "lead", "leader", "leading", "mentor", "mentorship", "mentoring", "manage", "manager", "management"},
		adds:     []string{"lead", "leader", "leadership", "mentor", "team"},
	},
	{
		triggers: []string{"cost", "costs", "efficiency", "efficient", "budget", "cheap", "optimize", "optimise", "optimization", "saving", "savings"},
		adds:     []string{"performance", "reliability", "observability", "efficiency"},
	},
}

var strippableSuffixes = []string{"ship", "ing", "ed"}

// ExpandQuery adds lightweight morphological variants and domain synonyms to a
// query token set. The input set is not modified.
func ExpandQuery(tokens Set) Set {
	expanded := make(Set, len(tokens))
	for tok := range tokens {
		expanded.Add(tok)
		for _, suffix := range strippableSuffixes {
			if strings.HasSuffix(tok, suffix) && len(tok)-len(suffix) >= 3 {
				expanded.Add(strings.TrimSuffix(tok, suffix))
			}
		}
	}

	for _, cluster := range synonymClusters {
		if !anyToken(expanded, cluster.triggers) {
			continue
		}
		for _, add := range cluster.adds {
			expanded.Add(add)
		}
	}

	return expanded
}

func anyToken(tokens Set, candidates []string) bool {
	for _, c := range candidates {
		if tokens.Has(c) {
			return true
		}
	}
	return false
}
