package mesh

// A Part is a named grouping of mesh entities. Parts host probe nodes
// separately from physics entities.
type Part struct {
	name   string
	rank   EntityRank
	ioPart bool
}

// NewPart creates a part. Engine implementations call this from
// Meta.DeclarePart; user code retrieves parts through Meta.
func NewPart(name string, rank EntityRank) *Part {
	return &Part{name: name, rank: rank}
}

// Name returns the part name.
func (p *Part) Name() string {
	return p.name
}

// EntityRank returns the rank of the entities the part holds.
func (p *Part) EntityRank() EntityRank {
	return p.rank
}

// IsIOPart tells if the part is visible to mesh I/O.
func (p *Part) IsIOPart() bool {
	return p.ioPart
}

// SetIOPartAttribute marks a part as I/O visible, so its entities appear in
// mesh output files.
func SetIOPartAttribute(p *Part) {
	p.ioPart = true
}
