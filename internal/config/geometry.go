package config

import (
	"fmt"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
)

// LoadGeometry loads a detector geometry snapshot from a JSON or YAML file
// and checks its structure. Pseudo-layer construction checks happen later,
// when the snapshot is handed to l1geometry.NewPseudoLayerCalculator.
func LoadGeometry(path string) (*l1geometry.Geometry, error) {
	data, ext, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	var geom l1geometry.Geometry
	if err := decode(data, ext, &geom); err != nil {
		return nil, err
	}
	if len(geom.SubDetectors) == 0 {
		return nil, fmt.Errorf("geometry %q declares no sub-detectors: %w", path, l1geometry.ErrNotInitialized)
	}
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	return &geom, nil
}
