package policy

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rowguard/internal/domain"
)

// resourceDoc is the YAML shape of one declared resource.
type resourceDoc struct {
	Name           string   `yaml:"name"`
	OwnerAttribute string   `yaml:"owner_attribute"`
	Ownership      string   `yaml:"ownership"` // "user" or "team"
	Rules          rulesDoc `yaml:"rules"`
}

// rulesDoc overrides individual operation rules. Empty fields fall back to
// the canonical rule set for the declared ownership.
type rulesDoc struct {
	Select string `yaml:"select"`
	Insert string `yaml:"insert"`
	Update string `yaml:"update"`
	Delete string `yaml:"delete"`
}

// policyFile is the top-level YAML document.
type policyFile struct {
	Resources []resourceDoc `yaml:"resources"`
}

// LoadFile reads a policy file and returns the declared rule sets. Unknown
// YAML fields are rejected so typos surface at boot instead of silently
// weakening a policy. The returned sets still need Register validation.
func LoadFile(path string) ([]domain.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a policy document.
func Parse(data []byte) ([]domain.RuleSet, error) {
	var doc policyFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	if len(doc.Resources) == 0 {
		return nil, domain.ErrIncompletePolicy("", "policy file declares no resources")
	}

	sets := make([]domain.RuleSet, 0, len(doc.Resources))
	for _, res := range doc.Resources {
		rs, err := res.toRuleSet()
		if err != nil {
			return nil, err
		}
		sets = append(sets, rs)
	}
	return sets, nil
}

func (d resourceDoc) toRuleSet() (domain.RuleSet, error) {
	var base domain.RuleSet
	switch d.Ownership {
	case "user", "":
		base = domain.UserOwnedRuleSet(d.Name, d.OwnerAttribute)
	case "team":
		base = domain.TeamOwnedRuleSet(d.Name, d.OwnerAttribute)
	default:
		return domain.RuleSet{}, domain.ErrIncompletePolicy(d.Name, "ownership must be 'user' or 'team', got %q", d.Ownership)
	}

	if d.Rules.Select != "" {
		base.Select = domain.Rule(d.Rules.Select)
	}
	if d.Rules.Insert != "" {
		base.Insert = domain.Rule(d.Rules.Insert)
	}
	if d.Rules.Update != "" {
		base.Update = domain.Rule(d.Rules.Update)
	}
	if d.Rules.Delete != "" {
		base.Delete = domain.Rule(d.Rules.Delete)
	}

	if err := base.Validate(); err != nil {
		return domain.RuleSet{}, err
	}
	return base, nil
}
