// Package telemetry holds the decoded vehicle state and the sinks that consume it.
//
// A Snapshot has one typed, optional field per engine quantity (RPM, wheel
// speeds, temperatures, pressures, gear) and a Channels map keyed by DataID
// for every item decoded from segmented payloads. Fields are written with
// last-write-wins semantics by ApplyPacket and ApplyItem.
//
// # Stale values
//
// Fields never expire. A channel that stops transmitting keeps showing its
// last value for as long as the snapshot lives. Consumers that need freshness
// should compare Snapshot.Updated or Channel.At against their own deadline.
//
// # Sharing
//
// In the default model a single goroutine decodes frames and owns the
// Snapshot, so no locking is needed. When other goroutines read the state,
// publish it through Shared, which copies snapshots under a RWMutex. Readers
// only observe the latest completed write.
//
// # Sinks
//
// A Sink receives one Update per decoded frame. JSONLWriter writes updates
// as JSON lines, LineWriter prints a compact status line whenever it changes.
package telemetry
