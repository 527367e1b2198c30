// Package mesh defines the abstractions of the distributed mesh engine that
// the probe layer consumes. The engine itself (entity storage, ghosting,
// parallel id generation) lives outside this module; packages here only see
// the Meta and Bulk surfaces.
package mesh

// A Rank identifies one process in a fixed-size collective run.
type Rank int

// An EntityID is a globally unique identifier of a mesh entity. Zero is
// never a valid id.
type EntityID uint64

// An Entity is a non-owning handle into the engine's entity storage. The
// zero value is invalid. Handles stay valid for the lifetime of the part
// they were declared into.
type Entity struct {
	id EntityID
}

// NewEntity wraps an id into a handle. Engine implementations use this when
// declaring entities.
func NewEntity(id EntityID) Entity {
	return Entity{id: id}
}

// ID returns the entity's global identifier.
func (e Entity) ID() EntityID {
	return e.id
}

// Valid tells if the handle refers to a declared entity.
func (e Entity) Valid() bool {
	return e.id != 0
}

// An EntityRank is the topological rank of an entity.
type EntityRank int

// Entity ranks. Probes only ever create node-rank entities.
const (
	NodeRank EntityRank = iota
	EdgeRank
	FaceRank
	ElemRank
)

func (r EntityRank) String() string {
	switch r {
	case NodeRank:
		return "node"
	case EdgeRank:
		return "edge"
	case FaceRank:
		return "face"
	case ElemRank:
		return "element"
	}

	return "unknown"
}

// Meta is the pre-finalization surface of the mesh engine. Parts and fields
// can only be declared before the mesh is committed. Declarations are
// idempotent: redeclaring a part or field by the same name returns the
// original object.
type Meta interface {
	// SpatialDimension returns the dimension of the mesh, 2 or 3.
	SpatialDimension() int

	// DeclarePart declares, or retrieves, the part with the given name.
	// Panics if called after the mesh is committed.
	DeclarePart(name string, rank EntityRank) *Part

	// DeclareField declares, or retrieves, the field with the given name.
	// Panics if called after the mesh is committed.
	DeclareField(name string, rank EntityRank) *Field

	// GetField returns the field with the given name, or nil if no such
	// field was declared.
	GetField(name string, rank EntityRank) *Field

	// IsCommitted tells if the mesh has been finalized.
	IsCommitted() bool
}

// Bulk is the post-finalization surface of the mesh engine, bound to one
// rank. Collective operations must be called by every rank in the same
// order and with the same arguments, or the run diverges.
type Bulk interface {
	// ParallelRank returns the rank this view is bound to.
	ParallelRank() Rank

	// ParallelSize returns the number of ranks in the run.
	ParallelSize() int

	// GenerateNewIDs allocates count globally unique ids. Collective:
	// every rank must call with the same count, and every rank observes
	// the same ids.
	GenerateNewIDs(rank EntityRank, count int) []EntityID

	// ModificationBegin opens a modification transaction. Collective.
	ModificationBegin()

	// ModificationEnd closes the transaction, making topology changes
	// visible. Collective.
	ModificationEnd()

	// DeclareNode creates a node entity on this rank, inside the given
	// parts. Only legal inside a modification transaction.
	DeclareNode(id EntityID, parts ...*Part) Entity

	// FieldData returns a mutable view of the field values stored on the
	// entity, or nil if the field is not defined on the entity's part.
	FieldData(f *Field, e Entity) []float64
}
