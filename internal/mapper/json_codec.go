package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// decodeJSONMap unmarshals a stored JSON column into a map. Malformed
// or empty payloads degrade to an empty map, never an error: listing
// operations must not fail on a single bad row.
func decodeJSONMap(data datatypes.JSON) map[string]interface{} {
	if len(data) == 0 {
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return map[string]interface{}{}
	}
	return out
}

// encodeJSONMap marshals a map for storage. A nil map is stored as {}.
func encodeJSONMap(data map[string]interface{}) datatypes.JSON {
	if data == nil {
		data = map[string]interface{}{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
