// Package l2hits owns Layer 2 (Hits) of the particle-flow data model.
//
// Responsibilities: calorimeter hit and track records supplied by the
// event-input stage, hit availability bookkeeping, and the per-event
// ordered hit index keyed by pseudo-layer.
// Key types: CaloHit, Track, OrderedHitIndex.
//
// Dependency rule: L2 may depend on L1, but never on L3+.
package l2hits
