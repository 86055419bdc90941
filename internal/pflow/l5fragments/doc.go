// Package l5fragments owns Layer 5 (Fragments) of the particle-flow model.
//
// Responsibilities: post-hoc split and merge decisions over the clusters an
// engine run produced. Small clusters are dissolved, photon showers are cut
// away from the mip segment of charged tracks, mip and photon fragments are
// merged back into their parents and left-over hits are redistributed.
// Key types: Resolver, FragmentConfig, Report.
//
// Dependency rule: L5 may depend on L1-L4, but never on L6+.
package l5fragments
