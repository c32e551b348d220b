package patterns

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// RuleConfig describes one false-positive context rule. A line that matches
// any enabled rule names code structure rather than data, so no term matching
// is attempted on it.
type RuleConfig struct {
	Regex       string
	Description string
	Enabled     bool
	Category    string
	Order       int
}

type RuleDefinitions struct {
	Rules map[string]RuleConfig
}

var DefaultRules = &RuleDefinitions{
	Rules: map[string]RuleConfig{
		// Python import/from, R library()/require(), C include, Julia/C# using
		"module_inclusion": {
			Regex:       `\b(?:import|from|require|include|library|using)\b`,
			Description: "Import or module-inclusion keyword as a whole word",
			Enabled:     true,
			Category:    "import",
			Order:       1,
		},
		"declaration": {
			Regex:       `\b(?:function|def|sub|class|struct|type)\s+\w+`,
			Description: "Function, class or type declaration followed by its name",
			Enabled:     true,
			Category:    "declaration",
			Order:       2,
		},
		// covers the spaceless C form #include<stdio.h>
		"preprocessor_include": {
			Regex:       `#include`,
			Description: "Preprocessor include directive",
			Enabled:     true,
			Category:    "import",
			Order:       3,
		},
		"annotation": {
			Regex:       `(?:^|[^\w.@])@\w+`,
			Description: "Decorator, annotation or macro token starting with @",
			Enabled:     true,
			Category:    "decorator",
			Order:       4,
		},
	},
}

type CompiledRule struct {
	Name        string
	Description string
	Regex       *regexp.Regexp
	Config      RuleConfig
}

// RuleSet applies the compiled context rules with logical OR.
type RuleSet struct {
	rules []*CompiledRule
	mu    sync.RWMutex
}

/*
Creates a rule set holding every enabled default rule
*/
func NewRuleSet() *RuleSet {
	rs := &RuleSet{}
	_ = rs.LoadRules(nil, nil)
	return rs
}

/*
Loads and compiles the default rules. includeCategories and
excludeCategories filter by category; at most one should be non-empty.
*/
func (rs *RuleSet) LoadRules(includeCategories, excludeCategories []string) error {
	if len(includeCategories) > 0 && len(excludeCategories) > 0 {
		return fmt.Errorf("include and exclude category filters cannot be combined")
	}

	known := make(map[string]bool)
	for _, cat := range Categories() {
		known[cat] = true
	}

	includeMap := make(map[string]bool)
	for _, cat := range includeCategories {
		if !known[cat] {
			return fmt.Errorf("unknown rule category %q", cat)
		}
		includeMap[cat] = true
	}
	excludeMap := make(map[string]bool)
	for _, cat := range excludeCategories {
		if !known[cat] {
			return fmt.Errorf("unknown rule category %q", cat)
		}
		excludeMap[cat] = true
	}

	compiled := make([]*CompiledRule, 0, len(DefaultRules.Rules))
	for name, config := range DefaultRules.Rules {
		if !config.Enabled {
			continue
		}
		if len(includeMap) > 0 && !includeMap[config.Category] {
			continue
		}
		if excludeMap[config.Category] {
			continue
		}

		re, err := regexp.Compile(config.Regex)
		if err != nil {
			return fmt.Errorf("rule %s: %w", name, err)
		}

		compiled = append(compiled, &CompiledRule{
			Name:        name,
			Description: config.Description,
			Regex:       re,
			Config:      config,
		})
	}

	sortRules(compiled)

	rs.mu.Lock()
	rs.rules = compiled
	rs.mu.Unlock()

	return nil
}

/*
Adds a custom rule after the loaded ones
*/
func (rs *RuleSet) AddRule(name, regex, description string) error {
	re, err := regexp.Compile(regex)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, r := range rs.rules {
		if r.Name == name {
			return fmt.Errorf("rule %s already exists", name)
		}
	}

	rs.rules = append(rs.rules, &CompiledRule{
		Name:        name,
		Description: description,
		Regex:       re,
		Config: RuleConfig{
			Regex:       regex,
			Description: description,
			Enabled:     true,
			Category:    "custom",
			Order:       len(rs.rules) + 1,
		},
	})

	return nil
}

// Categories lists the categories of the default rules, sorted.
func Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, config := range DefaultRules.Rules {
		if !seen[config.Category] {
			seen[config.Category] = true
			cats = append(cats, config.Category)
		}
	}
	sort.Strings(cats)
	return cats
}

// IsFalsePositiveContext reports whether any rule matches line.
func (rs *RuleSet) IsFalsePositiveContext(line string) bool {
	_, matched := rs.Match(line)
	return matched
}

// Match returns the first rule that matches line.
func (rs *RuleSet) Match(line string) (*CompiledRule, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	for _, rule := range rs.rules {
		if rule.Regex.MatchString(line) {
			return rule, true
		}
	}
	return nil, false
}

// Rules returns the compiled rules in evaluation order.
func (rs *RuleSet) Rules() []*CompiledRule {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	out := make([]*CompiledRule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

func (rs *RuleSet) GetRuleCount() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rules)
}

func sortRules(rules []*CompiledRule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Config.Order != rules[j].Config.Order {
			return rules[i].Config.Order < rules[j].Config.Order
		}
		return rules[i].Name < rules[j].Name
	})
}

var defaultRuleSet = sync.OnceValue(NewRuleSet)

// IsFalsePositiveContext checks line against the default rules.
func IsFalsePositiveContext(line string) bool {
	return defaultRuleSet().IsFalsePositiveContext(line)
}
