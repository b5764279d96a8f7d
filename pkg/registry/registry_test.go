package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testTaskTypes = []string{"calculate-roi", "catalog-lookup", "record-calculation", "index-calculation"}
	testCodes     = []string{
		"UNKNOWN_INDUSTRY", "UNKNOWN_SOLUTION", "INVALID_INPUT", "CALCULATION_FAILED",
		"DUPLICATE_CALCULATION", "CACHE_UNAVAILABLE", "DATABASE_INSERT_FAILED",
		"ELASTICSEARCH_CONNECTION_FAILED", "INDEX_FAILED", "INDEX_TIMEOUT",
	}
)

func TestLoadRegistry_ShippedFile(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	assert.Empty(t, reg.Validate(testTaskTypes, testCodes))

	a, ok := reg.Find("record-calculation")
	require.True(t, ok)
	assert.Equal(t, 3, a.Retries)

	_, ok = reg.Find("send-email")
	assert.False(t, ok)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"activities": [`), 0o644))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "calculate-roi", DisplayName: "Calculate ROI", TaskType: "calculate-roi", ErrorCodes: []string{"UNKNOWN_INDUSTRY"}},
		{ID: "calculate-roi", DisplayName: "Again", TaskType: "calculate-roi"},
		{ID: "legacy", DisplayName: "Legacy", TaskType: "legacy-task", Timeout: "soon", ErrorCodes: []string{"NOPE"}},
		{ID: "no-type", TaskType: ""},
	}}

	problems := reg.Validate([]string{"calculate-roi", "index-calculation"}, testCodes)

	var msgs []string
	for _, p := range problems {
		msgs = append(msgs, p.Error())
	}
	assert.ElementsMatch(t, []string{
		"duplicate activity ID: calculate-roi",
		"activity legacy has invalid timeout \"soon\"",
		"activity legacy lists unknown error code NOPE",
		"activity no-type missing required field: DisplayName",
		"activity no-type missing required field: TaskType",
		"task type index-calculation has no registry entry",
		"registry entry legacy-task has no worker",
	}, msgs)
}

func TestValidate_Empty(t *testing.T) {
	problems := (&ActivityRegistry{}).Validate(testTaskTypes, testCodes)
	require.Len(t, problems, 1)
	assert.Equal(t, "registry contains no activities", problems[0].Error())
}
