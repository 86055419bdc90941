// Package l4clustering owns Layer 4 (Clustering) of the particle-flow model.
//
// Responsibilities: the layer-sequential clustering engine that partitions
// the hits of one event into clusters, and the generic distance metric it
// uses to score hit-to-cluster compatibility.
// Key types: Engine, ClusteringConfig, DistanceMetric, ConeDistanceMetric,
// Result.
//
// Dependency rule: L4 may depend on L1-L3, but never on L5+.
// An Engine processes one event at a time and is not safe for concurrent
// use by multiple goroutines; run separate engines for separate events.
package l4clustering
