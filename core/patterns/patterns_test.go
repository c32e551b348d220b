package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFalsePositiveContext(t *testing.T) {
	cases := []struct {
		line string
		want bool
		rule string
	}{
		{"import pandas as pd", true, "module_inclusion"},
		{"from utils import clean_names", true, "module_inclusion"},
		{"library(haven)", true, "module_inclusion"},
		{"require(dplyr)", true, "module_inclusion"},
		{"using DataFrames", true, "module_inclusion"},
		{"#include <stdio.h>", true, "module_inclusion"},
		{"#include<stdio.h>", true, "module_inclusion"},
		{"def get_email():", true, "declaration"},
		{"function clean_address(x)", true, "declaration"},
		{"class Respondent:", true, "declaration"},
		{"struct household_member {", true, "declaration"},
		{"type PhoneNumber = string", true, "declaration"},
		{"Sub ParseNames()", false, ""},
		{"sub parse_names {", true, "declaration"},
		{"@property", true, "annotation"},
		{"    @test village_lookup()", true, "annotation"},
		{"x = @time load(\"names.csv\")", true, "annotation"},
		{"df['first_name'] = 'John'", false, ""},
		{"model <- lm(age ~ first_name)", false, ""},
		{"send_to(\"jane@example.org\")", false, ""},
		{"contact: a@b.org", false, ""},
		{"x <- obj@name", false, ""},
		{"hh@village <- NA", false, ""},
		{"clean <- function(x) gsub(' ', '', x)", false, ""},
		{"important_vars = ['email']", false, ""},
		{"defaults = load()", false, ""},
		{"", false, ""},
	}

	rs := NewRuleSet()
	for _, tc := range cases {
		rule, matched := rs.Match(tc.line)
		assert.Equal(t, tc.want, matched, tc.line)
		assert.Equal(t, tc.want, IsFalsePositiveContext(tc.line), tc.line)
		if tc.want {
			require.NotNil(t, rule, tc.line)
			assert.Equal(t, tc.rule, rule.Name, tc.line)
		}
	}
}

func TestSuppressesWholeLine(t *testing.T) {
	assert.True(t, IsFalsePositiveContext("from survey import data; df['email'] = x"))
}

func TestRuleOrder(t *testing.T) {
	rs := NewRuleSet()
	names := make([]string, 0, rs.GetRuleCount())
	for _, r := range rs.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"module_inclusion", "declaration", "preprocessor_include", "annotation"}, names)
}

func TestLoadRulesFilters(t *testing.T) {
	rs := NewRuleSet()

	require.NoError(t, rs.LoadRules([]string{"decorator"}, nil))
	assert.Equal(t, 1, rs.GetRuleCount())
	assert.True(t, rs.IsFalsePositiveContext("@property"))
	assert.False(t, rs.IsFalsePositiveContext("import os"))

	require.NoError(t, rs.LoadRules(nil, []string{"import"}))
	assert.Equal(t, 2, rs.GetRuleCount())
	assert.False(t, rs.IsFalsePositiveContext("import os"))

	assert.Error(t, rs.LoadRules([]string{"import"}, []string{"decorator"}))
	assert.Error(t, rs.LoadRules([]string{"macros"}, nil))
	assert.Error(t, rs.LoadRules(nil, []string{"macros"}))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"declaration", "decorator", "import"}, Categories())
}

func TestAddRule(t *testing.T) {
	rs := NewRuleSet()
	require.NoError(t, rs.AddRule("stata_label", `^\s*label\s+(?:var|define)\b`, "Stata label commands"))
	assert.True(t, rs.IsFalsePositiveContext("label var hh_name \"Name\""))
	assert.Error(t, rs.AddRule("stata_label", `x`, "dup"))
	assert.Error(t, rs.AddRule("broken", `(`, "bad regex"))
	assert.Equal(t, 5, rs.GetRuleCount())
}
