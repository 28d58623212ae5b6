package bmatch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/relex/eventsink/util"
	"gopkg.in/yaml.v3"
)

// valueMatch configures how to match the value of one field, e.g. equality to "Error"
type valueMatch struct {
	match       valueMatcher
	description string
	cost        int // relative cost to decide which field is checked first
}

type valueMatcher = func(value string) bool

type valueMatcherConstructor = func(expression string) (valueMatch, error)

var valueMatcherConstructors = map[string]valueMatcherConstructor{
	"!!str":         stringMatch("==", 1, func(v, expr string) bool { return v == expr }), // default tag of plain scalars
	"!!str-eq":      stringMatch("==", 1, func(v, expr string) bool { return v == expr }),
	"!!str-not":     stringMatch("!=", 1, func(v, expr string) bool { return v != expr }),
	"!!str-start":   stringMatch("^=", 1, strings.HasPrefix),
	"!!str-end":     stringMatch("$=", 1, strings.HasSuffix),
	"!!str-contain": stringMatch("*=", 500, strings.Contains),
	"!!str-any":     createValueMatcherAny,
	"!!glob":        createValueMatcherGlob,
	"!!regex":       createValueMatcherRegex,
	"!!len-gt":      lengthMatch(">", func(n, target int) bool { return n > target }),
	"!!len-lt":      lengthMatch("<", func(n, target int) bool { return n < target }),
}

func (match valueMatch) String() string {
	return match.description
}

// MarshalYAML provides custom marshalling to export readable document. The result is not reversible.
func (match valueMatch) MarshalYAML() (interface{}, error) {
	return match.description, nil
}

func (match *valueMatch) UnmarshalYAML(value *yaml.Node) error {
	creator, found := valueMatcherConstructors[value.Tag]
	if !found {
		return util.NewYamlError(value, fmt.Sprintf("Unsupported value-match tag: %s", value.Tag))
	}
	m, err := creator(value.Value)
	if err != nil {
		return util.NewYamlError(value, fmt.Sprintf("Failed value-match of tag %s: %s", value.Tag, err.Error()))
	}
	*match = m
	return nil
}

func stringMatch(operator string, baseCost int, test func(v, expr string) bool) valueMatcherConstructor {
	return func(expr string) (valueMatch, error) {
		if expr == "" {
			return valueMatch{}, fmt.Errorf("value is empty")
		}
		return valueMatch{
			match:       func(v string) bool { return test(v, expr) },
			description: operator + " " + expr,
			cost:        baseCost + len(expr)/2,
		}, nil
	}
}

func lengthMatch(operator string, test func(n, target int) bool) valueMatcherConstructor {
	return func(expr string) (valueMatch, error) {
		target, err := strconv.Atoi(expr)
		if err != nil {
			return valueMatch{}, err
		}
		return valueMatch{
			match:       func(v string) bool { return test(len(v), target) },
			description: "len " + operator + " " + expr,
			cost:        0,
		}, nil
	}
}

func createValueMatcherAny(expr string) (valueMatch, error) {
	if expr != "" {
		return valueMatch{}, fmt.Errorf("value must be empty")
	}
	return valueMatch{
		match:       func(v string) bool { return len(v) > 0 },
		description: "not-empty",
		cost:        0,
	}, nil
}

func createValueMatcherGlob(expr string) (valueMatch, error) {
	g, err := glob.Compile(expr)
	if err != nil {
		return valueMatch{}, err
	}
	return valueMatch{
		match:       g.Match,
		description: "~= " + expr,
		cost:        2000 + len(expr),
	}, nil
}

func createValueMatcherRegex(expr string) (valueMatch, error) {
	regex, err := regexp.Compile(expr)
	if err != nil {
		return valueMatch{}, err
	}
	return valueMatch{
		match:       regex.MatchString,
		description: "=~ " + expr,
		cost:        20000 + len(expr),
	}, nil
}
