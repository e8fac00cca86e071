// Package stylecheck asserts that computed CSS styles match a design spec.
package stylecheck

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Assertion expects the computed styles of the element matched by
// Selector (optionally inside Within) to contain Styles.
type Assertion struct {
	Selector string            `yaml:"selector"`
	Within   string            `yaml:"within,omitempty"`
	Styles   map[string]string `yaml:"styles"`
}

// Target is the element an assertion addresses.
func (a Assertion) Target() string {
	if a.Within == "" {
		return a.Selector
	}
	return a.Within + " " + a.Selector
}

// Spec is an ordered list of style assertions. A selector may appear more
// than once.
type Spec struct {
	Name       string            `yaml:"name"`
	Variables  map[string]string `yaml:"variables,omitempty"`
	Assertions []Assertion       `yaml:"assertions"`
}

// ComputedStyles maps an assertion target to its computed properties.
type ComputedStyles map[string]map[string]string

// Mismatch is one property whose computed value differs from the spec.
type Mismatch struct {
	Target   string
	Property string
	Expected string
	Actual   string
	Missing  bool
}

func (m Mismatch) String() string {
	if m.Missing {
		return fmt.Sprintf("%s { %s }: expected %q, property not computed", m.Target, m.Property, m.Expected)
	}
	return fmt.Sprintf("%s { %s }: expected %q, got %q", m.Target, m.Property, m.Expected, m.Actual)
}

// Parse decodes a YAML spec.
func Parse(r io.Reader) (*Spec, error) {
	var spec Spec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to decode style spec: %w", err)
	}

	for i, a := range spec.Assertions {
		if a.Selector == "" {
			return nil, fmt.Errorf("assertion %d: selector is required", i)
		}
		if len(a.Styles) == 0 {
			return nil, fmt.Errorf("assertion %d (%s): no styles", i, a.Selector)
		}
	}
	return &spec, nil
}

// Load reads a YAML spec file.
func Load(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open style spec %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Check compares actual against every assertion of spec and returns the
// mismatches in spec order, properties sorted by name. Values are
// compared after Normalize and variable expansion.
func Check(actual ComputedStyles, spec *Spec) []Mismatch {
	var mismatches []Mismatch

	for _, a := range spec.Assertions {
		target := a.Target()
		computed := actual[target]

		props := make([]string, 0, len(a.Styles))
		for prop := range a.Styles {
			props = append(props, prop)
		}
		sort.Strings(props)

		for _, prop := range props {
			expected := spec.expand(a.Styles[prop])
			value, ok := computed[prop]
			if !ok {
				mismatches = append(mismatches, Mismatch{Target: target, Property: prop, Expected: expected, Missing: true})
				continue
			}
			if !Equal(expected, value) {
				mismatches = append(mismatches, Mismatch{Target: target, Property: prop, Expected: expected, Actual: value})
			}
		}
	}

	return mismatches
}

// expand replaces a value naming a spec variable with the variable's value.
func (s *Spec) expand(value string) string {
	if v, ok := s.Variables[value]; ok {
		return v
	}
	return value
}

var (
	spaces     = regexp.MustCompile(`\s+`)
	bareNumber = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	zeroLength = regexp.MustCompile(`(^|[\s(,])0px\b`)
)

// Normalize canonicalises a CSS value: whitespace is collapsed, case is
// lowered, "0px" becomes "0" and a bare non-zero number gets a "px" unit.
func Normalize(value string) string {
	v := strings.ToLower(strings.TrimSpace(spaces.ReplaceAllString(value, " ")))
	v = strings.ReplaceAll(v, ", ", ",")
	v = zeroLength.ReplaceAllString(v, "${1}0")
	if bareNumber.MatchString(v) && v != "0" {
		v += "px"
	}
	return v
}

// Equal reports whether two CSS values are equal after Normalize.
func Equal(expected, actual string) bool {
	return Normalize(expected) == Normalize(actual)
}
