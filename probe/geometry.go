package probe

import "github.com/sarchlab/meshprobe/mesh"

// SamplePoint returns the j-th of numPoints evenly spaced sample points on
// the line from tail to tip. Point 0 is exactly the tail and point
// numPoints-1 is exactly the tip; rounding never shortens the line.
// Requires numPoints >= 2.
func SamplePoint(tail, tip []float64, numPoints, j int) []float64 {
	if j == numPoints-1 {
		point := make([]float64, len(tip))
		copy(point, tip)
		return point
	}

	point := make([]float64, len(tail))
	for d := range tail {
		dx := (tip[d] - tail[d]) / float64(numPoints-1)
		point[d] = tail[d] + float64(j)*dx
	}

	return point
}

// placeProbeNodes writes the sample coordinates of every owned probe node
// into the coordinate field. Probe geometry is static for the run; mesh
// motion is not supported.
func (dp *DataProbePostProcessing) placeProbeNodes(
	bulk mesh.Bulk,
	coordinates *mesh.Field,
) {
	for _, group := range dp.groups {
		for _, set := range group.Sets {
			for i, nodes := range set.nodes {
				for j, node := range nodes {
					point := SamplePoint(
						set.Tails[i], set.Tips[i], set.NumPoints[i], j)

					coords := bulk.FieldData(coordinates, node)
					copy(coords, point)
				}
			}
		}
	}
}
