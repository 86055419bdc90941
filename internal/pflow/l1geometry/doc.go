// Package l1geometry owns Layer 1 (Geometry) of the particle-flow data model.
//
// Responsibilities: Cartesian vector algebra, the immutable detector
// geometry snapshot, and the pseudo-layer calculator that maps a 3-D
// position onto a discretised depth index.
// Key types: Vector, Geometry, SubDetector, PseudoLayer,
// PseudoLayerCalculator.
//
// Dependency rule: L1 depends on nothing above it. Every other layer may
// import it.
package l1geometry
