package stylecheck

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `div[data-testid="static-page"]`

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"31.92", "31.92px"},
		{"31.92px", "31.92px"},
		{"  0px   0px\t32px ", "0 0 32px"},
		{"24px 0", "24px 0"},
		{"0", "0"},
		{"0px", "0"},
		{"rgba(255, 255, 255, 0.12)", "rgba(255,255,255,0.12)"},
		{"1px solid rgba(255,255,255,0.12)", "1px solid rgba(255,255,255,0.12)"},
		{"Content-Box", "content-box"},
		{"10px", "10px"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("31.92", "31.92px"))
	assert.True(t, Equal("0px 0px 32px", "0 0 32px"))
	assert.True(t, Equal("1px solid rgba(255, 255, 255, 0.12)", "1px  solid rgba(255,255,255,0.12)"))
	assert.False(t, Equal("32px", "31px"))
	assert.False(t, Equal("disc", "decimal"))
}

func TestLoad_StaticPage(t *testing.T) {
	spec, err := Load("testdata/static_page.yaml")
	require.NoError(t, err)

	assert.Equal(t, "static page", spec.Name)
	require.Len(t, spec.Assertions, 15)

	var headings []string
	for _, a := range spec.Assertions[:6] {
		headings = append(headings, a.Selector)
		assert.Equal(t, page, a.Within)
	}
	assert.Equal(t, []string{"h1", "h2", "h3", "h4", "h5", "h6"}, headings)
	assert.Equal(t, page+" h1", spec.Assertions[0].Target())
}

// renderedHeadings is what a browser computes for the static page headings.
func renderedHeadings() ComputedStyles {
	border := "1px solid rgba(255, 255, 255, 0.12)"
	return ComputedStyles{
		page + " h1": {"margin": "0px 0px 32px", "font-weight": "700", "padding-bottom": "9.6px", "font-size": "32px", "line-height": "42.56px", "border-bottom": border},
		page + " h2": {"margin": "0px 0px 24px", "font-weight": "700", "padding-bottom": "7.2px", "font-size": "24px", "line-height": "31.92px", "border-bottom": border},
		page + " h3": {"margin": "0px 0px 20px", "font-weight": "700", "line-height": "26.6px", "font-size": "20px"},
		page + " h4": {"margin": "0px 0px 16px", "font-weight": "700", "line-height": "21.28px", "font-size": "16px"},
		page + " h5": {"margin": "0px 0px 14px", "font-weight": "700", "line-height": "18.62px", "font-size": "14px"},
		page + " h6": {"margin": "0px 0px 13.6px", "font-weight": "700", "line-height": "18.088px", "font-size": "13.6px", "box-sizing": "content-box", "max-width": "100%"},
	}
}

func TestCheck_Headings(t *testing.T) {
	spec, err := Load("testdata/static_page.yaml")
	require.NoError(t, err)
	spec.Assertions = spec.Assertions[:6]

	assert.Empty(t, Check(renderedHeadings(), spec))
}

func TestCheck_ReportsMismatches(t *testing.T) {
	spec, err := Load("testdata/static_page.yaml")
	require.NoError(t, err)
	spec.Assertions = spec.Assertions[:6]

	actual := renderedHeadings()
	actual[page+" h2"]["font-size"] = "22px"
	delete(actual[page+" h5"], "line-height")

	expected := []Mismatch{
		{Target: page + " h2", Property: "font-size", Expected: "24px", Actual: "22px"},
		{Target: page + " h5", Property: "line-height", Expected: "18.62px", Missing: true},
	}

	if diff := cmp.Diff(expected, Check(actual, spec)); diff != "" {
		t.Errorf("Check() mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_DuplicateSelectors(t *testing.T) {
	spec, err := Load("testdata/static_page.yaml")
	require.NoError(t, err)

	var h6 []Assertion
	for _, a := range spec.Assertions {
		if a.Selector == "h6" {
			h6 = append(h6, a)
		}
	}
	require.Len(t, h6, 2)

	actual := ComputedStyles{page + " h6": {"box-sizing": "border-box", "max-width": "100%"}}
	mismatches := Check(actual, &Spec{Assertions: h6[1:]})

	require.Len(t, mismatches, 1)
	assert.Equal(t, "box-sizing", mismatches[0].Property)
	assert.Contains(t, mismatches[0].String(), `expected "content-box", got "border-box"`)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Missing selector", "assertions:\n  - styles: {color: red}\n"},
		{"No styles", "assertions:\n  - selector: h1\n"},
		{"Unknown field", "assertions:\n  - selector: h1\n    stiles: {color: red}\n"},
		{"Not YAML", "assertions: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
