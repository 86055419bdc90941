// Package l3clusters owns Layer 3 (Clusters) of the particle-flow data model.
//
// Responsibilities: the mutable cluster aggregate, the per-event append-only
// cluster arena with stale-safe handles, and straight-line fits through
// per-layer centroids.
// Key types: Cluster, Arena, ClusterID, FitResult.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
package l3clusters
