package probe

import (
	"fmt"
	"log"

	"github.com/sarchlab/meshprobe/mesh"
)

//go:generate mockgen -destination "mock_probe_test.go" -package probe -write_package_comment=false github.com/sarchlab/meshprobe/probe Realm

// A Realm is the owning simulation driver. It supplies the current time,
// the step count, and the mesh surfaces, and invokes the lifecycle
// operations at the defined points.
type Realm interface {
	// CurrentTime returns the current simulation time.
	CurrentTime() float64

	// TimeStepCount returns the number of completed time steps.
	TimeStepCount() int

	// Meta returns the pre-finalization mesh surface.
	Meta() mesh.Meta

	// Bulk returns this rank's post-finalization mesh surface.
	Bulk() mesh.Bulk
}

// lifecycleState tracks the two-phase provisioning protocol. Operations
// invoked out of order fail fast instead of corrupting mesh state.
type lifecycleState int

const (
	stateLoaded lifecycleState = iota
	stateDeclared
	stateProvisioned
)

func (s lifecycleState) String() string {
	switch s {
	case stateLoaded:
		return "loaded"
	case stateDeclared:
		return "declared"
	case stateProvisioned:
		return "provisioned"
	}

	return "unknown"
}

// DataProbePostProcessing owns the probe groups of a run and drives their
// lifecycle: Setup before mesh finalization, Initialize after, Execute
// once per time step.
type DataProbePostProcessing struct {
	realm  Realm
	groups []*GroupSpec

	outputFreq int
	logger     *log.Logger
	recorder   SampleRecorder
	sink       MeansSink

	state            lifecycleState
	inactiveSelector mesh.Selector
	missingFields    map[string]bool
}

// Groups returns the probe groups of the run.
func (dp *DataProbePostProcessing) Groups() []*GroupSpec {
	return dp.groups
}

func (dp *DataProbePostProcessing) mustBeInState(s lifecycleState) {
	if dp.state != s {
		log.Panicf("probe lifecycle violation: in state %s, need %s",
			dp.state, s)
	}
}

// Setup declares one dedicated node part per probe and registers the
// coordinate field plus every requested output field on it. Must run on
// every rank before the mesh is finalized.
func (dp *DataProbePostProcessing) Setup() error {
	dp.mustBeInState(stateLoaded)

	meta := dp.realm.Meta()
	nDim := meta.SpatialDimension()

	for _, group := range dp.groups {
		for _, set := range group.Sets {
			set.parts = make([]*mesh.Part, set.NumProbes())

			for i, partName := range set.PartNames {
				if len(set.Tails[i]) != nDim {
					return fmt.Errorf(
						"probe %s: coordinates have %d entries, mesh is %d-D",
						partName, len(set.Tails[i]), nDim)
				}

				part := meta.DeclarePart(partName, mesh.NodeRank)
				mesh.SetIOPartAttribute(part)
				set.parts[i] = part

				coordinates := meta.DeclareField(
					CoordinatesFieldName, mesh.NodeRank)
				mesh.PutFieldOnPart(coordinates, part, nDim)

				for _, req := range group.Fields {
					f := meta.DeclareField(req.Name, mesh.NodeRank)
					mesh.PutFieldOnPart(f, part, req.Components)
				}
			}
		}
	}

	dp.state = stateDeclared

	return nil
}

// Initialize creates the probe nodes and positions them. Must run on every
// rank after the mesh is finalized: id generation and the modification
// brackets are collective, so every rank calls them for every probe even
// when it owns none.
func (dp *DataProbePostProcessing) Initialize() error {
	dp.mustBeInState(stateDeclared)

	bulk := dp.realm.Bulk()
	myRank := bulk.ParallelRank()

	for _, group := range dp.groups {
		for _, set := range group.Sets {
			set.nodes = make([][]mesh.Entity, set.NumProbes())

			for i := 0; i < set.NumProbes(); i++ {
				numPoints := set.NumPoints[i]

				ids := bulk.GenerateNewIDs(mesh.NodeRank, numPoints)

				bulk.ModificationBegin()
				if set.OwningRanks[i] == myRank {
					set.nodes[i] = make([]mesh.Entity, numPoints)
					for j, id := range ids {
						set.nodes[i][j] = bulk.DeclareNode(id, set.parts[i])
					}
				}
				bulk.ModificationEnd()
			}
		}
	}

	meta := dp.realm.Meta()
	coordinates := meta.GetField(CoordinatesFieldName, mesh.NodeRank)
	if coordinates == nil {
		return fmt.Errorf("field %s is not registered", CoordinatesFieldName)
	}

	dp.placeProbeNodes(bulk, coordinates)

	dp.createInactiveSelector()

	dp.state = stateProvisioned

	return nil
}

// Execute samples the probes if the current step is an output step and is
// a no-op otherwise. Sampling reads are local to the owning rank.
func (dp *DataProbePostProcessing) Execute() {
	dp.mustBeInState(stateProvisioned)

	currentTime := dp.realm.CurrentTime()
	stepCount := dp.realm.TimeStepCount()

	if stepCount%dp.outputFreq != 0 {
		return
	}

	dp.provideAverage(currentTime, stepCount)
}

func (dp *DataProbePostProcessing) createInactiveSelector() {
	var allTheParts []*mesh.Part

	for _, group := range dp.groups {
		for _, set := range group.Sets {
			allTheParts = append(allTheParts, set.parts...)
		}
	}

	dp.inactiveSelector = mesh.SelectUnion(allTheParts)
}

// InactiveSelector returns the union selector over all probe parts. The
// owning simulation subtracts it from the active-physics selector so probe
// nodes stay out of field solves.
func (dp *DataProbePostProcessing) InactiveSelector() *mesh.Selector {
	return &dp.inactiveSelector
}
