package history

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExport_YAML(t *testing.T) {
	records := []Record{
		{ID: "01ABC", App: "org.example.app", Status: "expired", Reason: "TIMEOUT", ShownAt: 100, ClosedAt: 103},
		{ID: "01DEF", App: "org.example.other", Label: "Other", Status: "dismissed", Reason: "SCREEN_TAP", ShownAt: 200, ClosedAt: 201},
	}

	data, err := Export(records, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shown_at: 100")

	var decoded []Record
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, records, decoded)
}

func TestExport_JSON(t *testing.T) {
	records := []Record{
		{ID: "01ABC", App: "org.example.app", Status: "expired", Reason: "TIMEOUT", ShownAt: 100, ClosedAt: 103},
	}

	data, err := Export(records, FormatJSON)
	require.NoError(t, err)

	var decoded []Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, records, decoded)
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := Export(nil, "toml")
	assert.Error(t, err)
}
