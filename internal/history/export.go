package history

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Export formats supported by Export.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export encodes records for machine consumption in the given format.
func Export(records []Record, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(records, "", "  ")
	case FormatYAML:
		return yaml.Marshal(records)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}
