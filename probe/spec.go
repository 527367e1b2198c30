// Package probe implements data probes: virtual sampling lines injected
// into a distributed mesh during a running simulation. Probes live in
// dedicated node-only parts, are owned by exactly one rank each, and are
// sampled periodically by averaging the field values on their nodes.
package probe

import "github.com/sarchlab/meshprobe/mesh"

// FieldSuffix is appended to requested field names so probe fields never
// collide with the physics field of the same name.
const FieldSuffix = "_probe"

// CoordinatesFieldName is the name of the coordinate field registered on
// every probe part.
const CoordinatesFieldName = "coordinates"

// A FieldRequest asks for one field to be sampled on a probe group. Name
// already carries the probe suffix after loading.
type FieldRequest struct {
	Name       string
	Components int
}

// A ProbeSet describes N line-of-site probes of one group. All per-probe
// data is held in parallel slices indexed 0..N-1. Parts and node handles
// are populated during Setup and Initialize; node handles exist only on
// the owning rank.
type ProbeSet struct {
	PartNames   []string
	OwningRanks []mesh.Rank
	NumPoints   []int
	Tips        [][]float64
	Tails       [][]float64

	parts []*mesh.Part
	nodes [][]mesh.Entity
}

// NumProbes returns the number of probes in the set.
func (s *ProbeSet) NumProbes() int {
	return len(s.PartNames)
}

// Part returns the probe's dedicated part, or nil before Setup ran.
func (s *ProbeSet) Part(i int) *mesh.Part {
	if s.parts == nil {
		return nil
	}
	return s.parts[i]
}

// Nodes returns the probe's owned node handles. Empty on every rank but
// the owning one, and before Initialize ran.
func (s *ProbeSet) Nodes(i int) []mesh.Entity {
	if s.nodes == nil {
		return nil
	}
	return s.nodes[i]
}

// A GroupSpec describes one named group of homogeneous probes: the source
// mesh regions, the line-of-site sets, and the fields to sample. Populated
// once at configuration load and immutable afterwards.
type GroupSpec struct {
	Name        string
	FromTargets []string
	Fields      []FieldRequest
	Sets        []*ProbeSet
}
