// Package registry holds the static relationship rule table: which
// (sourceKind, targetKind, role, direction) tuples are legal. Each
// entity kind contributes its own rules, merged once at startup; after
// assembly the registry is immutable and safe for concurrent use
// without locking.
package registry

import (
	"cortex-backend/domain/core/entities"
	pkgerrors "cortex-backend/pkg/errors"
)

// Rule declares that an entity of SourceKind may be the from endpoint
// of a synapse with this role and direction pointing at TargetKind.
// Rules are data, queried but never mutated at runtime.
type Rule struct {
	SourceKind entities.Kind
	TargetKind entities.Kind
	Role       string
	Direction  entities.Direction
}

// Registry is the merged lookup table keyed by source kind
type Registry struct {
	rules map[entities.Kind][]Rule
}

// NewRegistry merges per-kind rule contributions into one table
func NewRegistry(contributions ...[]Rule) *Registry {
	merged := make(map[entities.Kind][]Rule)
	for _, rules := range contributions {
		for _, r := range rules {
			merged[r.SourceKind] = append(merged[r.SourceKind], r)
		}
	}
	return &Registry{rules: merged}
}

// NewDefaultRegistry assembles the registry from every registered
// kind's own contribution.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		userRules(),
		postRules(),
		commentRules(),
		tagRules(),
	)
}

// RulesFor returns all rules where kind is the source. Unknown kinds
// return an empty list, not an error.
func (r *Registry) RulesFor(kind entities.Kind) []Rule {
	rules := r.rules[kind]
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Validate succeeds only when a rule matches all four fields. A rule
// registered as undirected matches any requested direction.
func (r *Registry) Validate(sourceKind, targetKind entities.Kind, role string, direction entities.Direction) error {
	for _, rule := range r.rules[sourceKind] {
		if rule.TargetKind != targetKind || rule.Role != role {
			continue
		}
		if rule.Direction == direction || rule.Direction == entities.DirectionUndirected {
			return nil
		}
	}
	return pkgerrors.NewNoMatchingRuleError(string(sourceKind), string(targetKind), role, string(direction))
}
