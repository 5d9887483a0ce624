package poller

import (
	"errors"
	"testing"
)

func TestLookupPath(t *testing.T) {
	doc, err := decodeDocument([]byte(`{
		"main": {"temp": 4.2, "humidity": 81},
		"weather": [{"icon": "10d"}, {"icon": "01n"}],
		"flat": 1
	}`))
	if err != nil {
		t.Fatalf("decodeDocument() error = %v", err)
	}

	tests := []struct {
		name   string
		path   string
		want   interface{}
		wantOK bool
	}{
		{"nested object", "main.temp", 4.2, true},
		{"integer json number", "main.humidity", float64(81), true},
		{"array index", "weather.0.icon", "10d", true},
		{"second element", "weather.1.icon", "01n", true},
		{"index out of range", "weather.2.icon", nil, false},
		{"non numeric index", "weather.x.icon", nil, false},
		{"missing key", "main.pressure", nil, false},
		{"descend into scalar", "flat.value", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := lookupPath(doc, tt.path)
			if ok != tt.wantOK {
				t.Fatalf("lookupPath(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("lookupPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFloatAt_WrongType(t *testing.T) {
	doc, _ := decodeDocument([]byte(`{"temperature": "warm"}`))

	_, err := floatAt(doc, "temperature")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("floatAt() error = %v, want ErrMalformed", err)
	}
}

func TestStringAt_WrongType(t *testing.T) {
	doc, _ := decodeDocument([]byte(`{"weather": [{"icon": 10}]}`))

	_, err := stringAt(doc, "weather.0.icon")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("stringAt() error = %v, want ErrMalformed", err)
	}
}

func TestDecodeDocument_Invalid(t *testing.T) {
	_, err := decodeDocument([]byte(`{not json`))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("decodeDocument() error = %v, want ErrMalformed", err)
	}
}
