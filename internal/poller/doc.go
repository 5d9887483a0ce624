// Package poller fetches readings and keeps their slots current.
//
// This package is internal to weatherpanel and handles the periodic polling
// of the indoor sensor and the outdoor weather service. Each source runs in
// its own [Poller] loop with its own cadence.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with per-request timeout and size limits
//   - [HTTPSource]: one GET request decoded into a store.Reading
//   - [Poller]: cadence loop writing fetch outcomes into a store.Slot
//
// Sources never retry internally. Retry policy belongs to the Poller, which
// simply tries again on its next cadence.
package poller
