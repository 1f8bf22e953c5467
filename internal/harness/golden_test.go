package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGolden_CopyEdit(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/copy_edit.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestGolden_CycleRecovery(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/cycle_recovery.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestSnapshot_EmptyListsAreArrays(t *testing.T) {
	s := Snapshot{ScenarioName: "empty", Runs: []RunTrace{}}
	data, err := s.Marshal()
	require.NoError(t, err)
	require.Equal(t, "{\n  \"scenario_name\": \"empty\",\n  \"runs\": []\n}\n", string(data))
}
