package l3clusters

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
)

// ErrInsufficientPoints is returned when a fit has fewer than two distinct
// layer centroids to work with.
var ErrInsufficientPoints = errors.New("insufficient points for fit")

// FitResult describes a straight line through a cluster.
type FitResult struct {
	Direction  l1geometry.Vector // unit vector pointing away from the IP
	Intercept  l1geometry.Vector // point on the line (mean of fitted centroids)
	Chi2       float64
	RMS        float64
	Successful bool
}

// FitLayerCentroids fits a straight line through the per-layer centroids of a
// cluster in [startLayer, endLayer]. The direction is the principal axis of
// the centroids; chi2 is the mean squared perpendicular residual in units of
// the layer's mean cell size.
func FitLayerCentroids(c *Cluster, startLayer, endLayer l1geometry.PseudoLayer) (FitResult, error) {
	var (
		centroids []l1geometry.Vector
		sigmas    []float64
	)
	c.hits.Range(startLayer, endLayer, func(_ l1geometry.PseudoLayer, hits []*l2hits.CaloHit) bool {
		var sum l1geometry.Vector
		var cellSum float64
		for _, h := range hits {
			sum = sum.Add(h.Position)
			cellSum += h.CellLengthScale
		}
		n := float64(len(hits))
		centroids = append(centroids, sum.Scale(1/n))
		sigmas = append(sigmas, cellSum/n)
		return true
	})
	return fitPoints(centroids, sigmas)
}

func fitPoints(points []l1geometry.Vector, sigmas []float64) (FitResult, error) {
	n := len(points)
	if n < 2 {
		return FitResult{}, fmt.Errorf("%d centroids: %w", n, ErrInsufficientPoints)
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	for i, p := range points {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	mean := l1geometry.V(stat.Mean(xs, nil), stat.Mean(ys, nil), stat.Mean(zs, nil))

	centred := mat.NewDense(n, 3, nil)
	for i, p := range points {
		d := p.Sub(mean)
		centred.SetRow(i, []float64{d.X, d.Y, d.Z})
	}

	var svd mat.SVD
	if ok := svd.Factorize(centred, mat.SVDThinV); !ok {
		return FitResult{}, fmt.Errorf("svd factorisation failed: %w", l1geometry.ErrFailure)
	}
	if values := svd.Values(nil); len(values) == 0 || values[0] == 0 {
		return FitResult{}, fmt.Errorf("all centroids coincide: %w", ErrInsufficientPoints)
	}
	var v mat.Dense
	svd.VTo(&v)
	direction := l1geometry.V(v.At(0, 0), v.At(1, 0), v.At(2, 0))

	// Orient outward: from the first fitted centroid towards the last.
	if direction.Dot(points[n-1].Sub(points[0])) < 0 {
		direction = direction.Scale(-1)
	}

	var sumSq, chi2 float64
	for i, p := range points {
		dPerp2 := direction.Cross(p.Sub(mean)).MagnitudeSquared()
		sumSq += dPerp2
		sigma := sigmas[i]
		if sigma <= 0 {
			sigma = 1
		}
		chi2 += dPerp2 / (sigma * sigma)
	}

	return FitResult{
		Direction:  direction,
		Intercept:  mean,
		Chi2:       chi2 / float64(n),
		RMS:        math.Sqrt(sumSq / float64(n)),
		Successful: true,
	}, nil
}
