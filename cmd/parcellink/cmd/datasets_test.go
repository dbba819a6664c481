package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatasetsCommandStructure(t *testing.T) {
	assert.Equal(t, "datasets", datasetsCmd.Use)
	assert.NotEmpty(t, datasetsCmd.Short)
	assert.NotEmpty(t, datasetsCmd.Long)
	assert.NotNil(t, datasetsCmd.RunE)
}

func TestRunDatasets(t *testing.T) {
	configPath, _ := writeFixture(t)

	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()
	cfgFile = configPath

	var buf bytes.Buffer
	datasetsCmd.SetOut(&buf)
	datasetsCmd.SetErr(&buf)

	err := runDatasets(datasetsCmd, []string{})
	assert.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Datasets defined in")
	assert.Contains(t, output, "1. moves")
	assert.Contains(t, output, "Type:          land_move")
	assert.Contains(t, output, "Columns:       이동전_필지코드, 이동후_필지코드")
	assert.Contains(t, output, "3. ledger")
	assert.Contains(t, output, "Total: 3 dataset(s)")
}

func TestRunDatasets_MissingConfig(t *testing.T) {
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()
	cfgFile = "/tmp/nonexistent_datasets_config.yaml"

	err := runDatasets(datasetsCmd, []string{})
	assert.Error(t, err)
}
