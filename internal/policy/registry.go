// Package policy holds the declarative per-resource rule sets and validates
// them once at process startup.
package policy

import (
	"sort"
	"sync"

	"rowguard/internal/domain"
)

// Registry stores one validated rule set per resource. Registration happens
// during initialization; after Freeze the registry is immutable and is read
// without locking concerns for the remainder of the process lifetime. No
// mutation path is exposed to request-handling code.
type Registry struct {
	mu     sync.RWMutex
	rules  map[string]domain.RuleSet
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]domain.RuleSet)}
}

// Register validates and adds a rule set. It fails with an
// IncompletePolicyError if the rule set does not cover all four operations,
// with a ConflictError on duplicate registration, and with a ValidationError
// after Freeze.
func (r *Registry) Register(rs domain.RuleSet) error {
	if err := rs.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return domain.ErrValidation("policy registry is frozen; cannot register %q", rs.Resource)
	}
	if _, exists := r.rules[rs.Resource]; exists {
		return domain.ErrConflict("policy for %q already registered", rs.Resource)
	}
	r.rules[rs.Resource] = rs
	return nil
}

// Freeze seals the registry. Called once after startup registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Lookup returns the rule set for resource, or an UnknownPolicyError.
func (r *Registry) Lookup(resource string) (domain.RuleSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.rules[resource]
	if !ok {
		return domain.RuleSet{}, domain.ErrUnknownPolicy(resource)
	}
	return rs, nil
}

// Resources returns the registered resource names, sorted.
func (r *Registry) Resources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns the built-in rule sets the server registers when no
// policy file is configured: the user-owned credentials resource and the
// team-owned teams resource.
func Defaults() []domain.RuleSet {
	return []domain.RuleSet{
		domain.UserOwnedRuleSet("credentials", "owner_id"),
		domain.TeamOwnedRuleSet("teams", "created_by"),
	}
}

// BuildRegistry registers all rule sets and freezes the result. Any
// registration error aborts; intended for boot.
func BuildRegistry(sets []domain.RuleSet) (*Registry, error) {
	reg := NewRegistry()
	for _, rs := range sets {
		if err := reg.Register(rs); err != nil {
			return nil, err
		}
	}
	reg.Freeze()
	return reg, nil
}
