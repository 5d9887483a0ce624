package store

import "time"

// Reading is one successful measurement produced by a source.
//
// Reading is immutable once constructed. Icon is only populated by sources
// that report a weather condition code (e.g. "10d", "01n").
type Reading struct {
	// Temperature in degrees Celsius.
	Temperature float64 `json:"temperature"`

	// Humidity as relative humidity percent.
	Humidity float64 `json:"humidity"`

	// Pressure in hPa.
	Pressure float64 `json:"pressure"`

	// Icon is the condition icon code, empty when the source has none.
	Icon string `json:"icon,omitempty"`

	// FetchedAt is when the reading was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// Snapshot is the immutable state of a [Slot] at one instant.
//
// Latest is nil until the first successful fetch. A failed fetch clears Fresh
// but keeps Latest, so stale values stay displayable.
type Snapshot struct {
	// Name identifies the slot ("indoor" or "outdoor").
	Name string `json:"name"`

	// Latest is the last successful reading, nil if none yet.
	Latest *Reading `json:"latest"`

	// Fresh is true only if the most recent fetch attempt succeeded.
	Fresh bool `json:"fresh"`

	// Attempts counts fetch attempts recorded on this slot.
	Attempts uint64 `json:"attempts"`

	// Failures counts failed fetch attempts.
	Failures uint64 `json:"failures"`

	// LastError is the message of the most recent failure, cleared on success.
	LastError string `json:"last_error,omitempty"`

	// UpdatedAt is when the slot last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// HasReading reports whether the slot has ever received a reading.
func (s Snapshot) HasReading() bool {
	return s.Latest != nil
}
