// internal/roi/catalog/catalog_test.go
package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault_Shape(t *testing.T) {
	c := Default()

	industries := c.Industries()
	assert.Len(t, industries, IndustryCount)
	assert.Equal(t, IndustryCount, c.Len())

	total := 0
	for _, name := range industries {
		solutions, err := c.Solutions(name)
		require.NoError(t, err, name)
		assert.Len(t, solutions, SolutionsPerIndustry, name)
		total += len(solutions)
	}
	assert.Equal(t, 88, total)
}

func TestDefault_AnchorMultipliers(t *testing.T) {
	c := Default()

	tests := []struct {
		industry string
		expected float64
	}{
		{"All Industries", 3.5},
		{"Healthcare", 3.8},
		{"Financial Services", 4.2},
		{"Government", 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.industry, func(t *testing.T) {
			ind, err := c.Industry(tt.industry)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ind.BaseMultiplier)
		})
	}
}

func TestDefault_MultiplierRange(t *testing.T) {
	c := Default()
	for _, name := range c.Industries() {
		ind, err := c.Industry(name)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ind.BaseMultiplier, 3.0, name)
		assert.LessOrEqual(t, ind.BaseMultiplier, 4.2, name)
	}
}

func TestIndustries_StableOrder(t *testing.T) {
	c := Default()
	first := c.Industries()
	second := c.Industries()
	assert.Equal(t, first, second)
	assert.Equal(t, DefaultIndustryName, first[0])
}

func TestUnknownIdentifiers(t *testing.T) {
	c := Default()

	_, err := c.Solutions("Not A Real Industry")
	assert.True(t, errors.Is(err, ErrUnknownIndustry))
	var indErr *UnknownIndustryError
	require.True(t, errors.As(err, &indErr))
	assert.Equal(t, "Not A Real Industry", indErr.Industry)

	_, err = c.Industry("Not A Real Industry")
	assert.True(t, errors.Is(err, ErrUnknownIndustry))

	_, err = c.Solution("Not A Real Industry", "Fraud Detection")
	assert.True(t, errors.Is(err, ErrUnknownIndustry))

	_, err = c.Solution("Healthcare", "Fraud Detection")
	assert.True(t, errors.Is(err, ErrUnknownSolution))
	assert.False(t, errors.Is(err, ErrUnknownIndustry))
	var solErr *UnknownSolutionError
	require.True(t, errors.As(err, &solErr))
	assert.Equal(t, "Healthcare", solErr.Industry)
	assert.Equal(t, "Fraud Detection", solErr.Solution)
}

func TestSolution_Found(t *testing.T) {
	c := Default()
	s, err := c.Solution("All Industries", "AI Workflow Automation")
	require.NoError(t, err)
	assert.Equal(t, 35.0, s.TimeSavingsPercent)
}

func TestAccessors_ReturnCopies(t *testing.T) {
	c := Default()

	ind, err := c.Industry("Healthcare")
	require.NoError(t, err)
	ind.Solutions[0].Name = "mutated"
	ind.BaseMultiplier = 99

	again, err := c.Industry("Healthcare")
	require.NoError(t, err)
	assert.Equal(t, "Patient Intake Automation", again.Solutions[0].Name)
	assert.Equal(t, 3.8, again.BaseMultiplier)

	names := c.Industries()
	names[0] = "mutated"
	assert.Equal(t, DefaultIndustryName, c.Industries()[0])
}

func TestNew_CopiesInput(t *testing.T) {
	data := builtinIndustries()
	c, err := New(data)
	require.NoError(t, err)

	data[1].Solutions[0].TimeSavingsPercent = 1
	s, err := c.Solution("Healthcare", "Patient Intake Automation")
	require.NoError(t, err)
	assert.Equal(t, 40.0, s.TimeSavingsPercent)
}

func TestNew_ShapeViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]Industry) []Industry
	}{
		{
			name:   "too few industries",
			mutate: func(in []Industry) []Industry { return in[:21] },
		},
		{
			name: "too many industries",
			mutate: func(in []Industry) []Industry {
				extra := copyIndustry(in[0])
				extra.Name = "Extra"
				return append(in, extra)
			},
		},
		{
			name: "three solutions",
			mutate: func(in []Industry) []Industry {
				in[3].Solutions = in[3].Solutions[:3]
				return in
			},
		},
		{
			name: "duplicate industry",
			mutate: func(in []Industry) []Industry {
				in[5].Name = in[4].Name
				return in
			},
		},
		{
			name: "duplicate solution",
			mutate: func(in []Industry) []Industry {
				in[2].Solutions[1].Name = in[2].Solutions[0].Name
				return in
			},
		},
		{
			name: "zero multiplier",
			mutate: func(in []Industry) []Industry {
				in[0].BaseMultiplier = 0
				return in
			},
		},
		{
			name: "empty industry name",
			mutate: func(in []Industry) []Industry {
				in[7].Name = " "
				return in
			},
		},
		{
			name: "missing default industry",
			mutate: func(in []Industry) []Industry {
				in[0].Name = "Every Industry"
				return in
			},
		},
		{
			name: "missing government",
			mutate: func(in []Industry) []Industry {
				for i := range in {
					if in[i].Name == "Government" {
						in[i].Name = "Public Sector"
					}
				}
				return in
			},
		},
		{
			name: "time savings above 100",
			mutate: func(in []Industry) []Industry {
				in[9].Solutions[2].TimeSavingsPercent = 120
				return in
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.mutate(builtinIndustries()))
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog))
		})
	}
}

func TestLoadFile_RoundTripsDefault(t *testing.T) {
	data, err := yaml.Marshal(Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Industries(), loaded.Industries())

	ind, err := loaded.Industry("Financial Services")
	require.NoError(t, err)
	assert.Equal(t, 4.2, ind.BaseMultiplier)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("industries:\n  - name: Only One\n    base_multiplier: 3.5\n"))
	assert.True(t, errors.Is(err, ErrInvalidCatalog))

	_, err = Parse([]byte("industries:\n  - nme: typo\n"))
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
}

func TestParse_RequiresAnchors(t *testing.T) {
	c := Default()
	data, err := yaml.Marshal(c)
	require.NoError(t, err)

	renamed := strings.Replace(string(data), "name: All Industries", "name: Cross-Industry", 1)
	_, err = Parse([]byte(renamed))
	assert.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Contains(t, err.Error(), DefaultIndustryName)
}
