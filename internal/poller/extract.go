package poller

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformed is returned when a payload cannot be decoded into a reading.
var ErrMalformed = errors.New("malformed payload")

// FieldPaths maps reading fields to dot-notation paths in a JSON payload.
//
// Path segments that are integers index into arrays, so "weather.0.icon"
// reads {"weather": [{"icon": "10d"}]}. An empty Icon path means the source
// has no icon.
type FieldPaths struct {
	Temperature string
	Humidity    string
	Pressure    string
	Icon        string
}

// IndoorPaths reads a flat sensor payload.
var IndoorPaths = FieldPaths{
	Temperature: "temperature",
	Humidity:    "humidity",
	Pressure:    "pressure",
}

// OutdoorPaths reads an OpenWeatherMap current-weather payload.
var OutdoorPaths = FieldPaths{
	Temperature: "main.temp",
	Humidity:    "main.humidity",
	Pressure:    "main.pressure",
	Icon:        "weather.0.icon",
}

// decodeDocument parses body into a generic JSON document.
func decodeDocument(body []byte) (interface{}, error) {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return data, nil
}

// lookupPath walks a JSON structure using dot notation.
func lookupPath(data interface{}, path string) (interface{}, bool) {
	current := data

	for _, part := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}

	return current, true
}

// floatAt extracts a numeric field.
func floatAt(data interface{}, path string) (float64, error) {
	v, ok := lookupPath(data, path)
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", ErrMalformed, path)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: field %q is %T, want number", ErrMalformed, path, v)
	}
	return f, nil
}

// stringAt extracts a string field.
func stringAt(data interface{}, path string) (string, error) {
	v, ok := lookupPath(data, path)
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrMalformed, path)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrMalformed, path, v)
	}
	return s, nil
}
