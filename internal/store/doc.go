// Package store holds the latest readings shown on the panel.
//
// This package is internal to weatherpanel and manages the two reading slots
// (indoor and outdoor). Each slot keeps the last successful [Reading] plus a
// freshness flag describing whether the most recent fetch attempt succeeded.
//
// The main components are:
//
//   - [Slot]: copy-on-write holder of one source's latest [Snapshot]
//   - [State]: the indoor and outdoor slots of one panel assembly
//   - [Hub]: pub/sub fan-out of slot commits to status subscribers
//
// Slots publish immutable snapshots through an atomic pointer swap. Readers
// never block the writer and never need more than one slot at a time, so
// there is no lock ordering to reason about.
package store
