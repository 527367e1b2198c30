// Package memmesh provides an in-process, multi-rank implementation of the
// mesh abstractions. Each rank runs in its own goroutine and collective
// operations synchronize through a cyclic barrier, so the collective
// ordering requirements of the real engine hold here too. It backs tests
// and the demo CLI; it is not a distributed mesh.
package memmesh

import (
	"log"
	"sync"

	"github.com/sarchlab/meshprobe/mesh"
)

// Builder builds an Engine.
type Builder struct {
	numRanks   int
	spatialDim int
}

// MakeBuilder creates a builder with a single rank and a 3-D mesh.
func MakeBuilder() Builder {
	return Builder{
		numRanks:   1,
		spatialDim: 3,
	}
}

// WithRanks sets the number of ranks in the run.
func (b Builder) WithRanks(n int) Builder {
	b.numRanks = n
	return b
}

// WithSpatialDimension sets the mesh dimension.
func (b Builder) WithSpatialDimension(d int) Builder {
	b.spatialDim = d
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.numRanks < 1 {
		log.Panicf("rank count must be positive, got %d", b.numRanks)
	}

	if b.spatialDim != 2 && b.spatialDim != 3 {
		log.Panicf("spatial dimension must be 2 or 3, got %d", b.spatialDim)
	}
}

// Build builds the engine.
func (b Builder) Build() *Engine {
	b.parametersMustBeValid()

	e := &Engine{
		meta: &metaData{
			spatialDim: b.spatialDim,
			parts:      make(map[string]*mesh.Part),
			fields:     make(map[fieldKey]*mesh.Field),
		},
		barrier:   newBarrier(b.numRanks),
		genCounts: make([]int, b.numRanks),
		nextID:    1,
	}

	e.bulks = make([]*bulkData, b.numRanks)
	for r := 0; r < b.numRanks; r++ {
		e.bulks[r] = &bulkData{
			engine:    e,
			rank:      mesh.Rank(r),
			parts:     make(map[mesh.EntityID][]*mesh.Part),
			fieldData: make(map[*mesh.Field]map[mesh.EntityID][]float64),
		}
	}

	return e
}

// An Engine holds the meta data shared by all ranks and one bulk view per
// rank.
type Engine struct {
	meta  *metaData
	bulks []*bulkData

	barrier   *barrier
	genCounts []int
	idBlock   []mesh.EntityID
	nextID    uint64
}

// Meta returns the shared meta data.
func (e *Engine) Meta() mesh.Meta {
	return e.meta
}

// Bulk returns the bulk view bound to the given rank.
func (e *Engine) Bulk(rank mesh.Rank) mesh.Bulk {
	return e.bulks[rank]
}

// NumRanks returns the number of ranks in the run.
func (e *Engine) NumRanks() int {
	return len(e.bulks)
}

// Commit finalizes the meta data. Parts and fields can no longer be
// declared afterwards. Call once, between the declare phase and the first
// bulk operation.
func (e *Engine) Commit() {
	e.meta.mu.Lock()
	defer e.meta.mu.Unlock()

	if e.meta.committed {
		log.Panic("mesh is already committed")
	}

	e.meta.committed = true
}

// Run executes f once per rank, each on its own goroutine, and waits for
// all of them. Collective calls made by f stay synchronized through the
// engine's barrier.
func (e *Engine) Run(f func(rank mesh.Rank, bulk mesh.Bulk)) {
	var wg sync.WaitGroup

	for r := range e.bulks {
		wg.Add(1)
		go func(rank mesh.Rank) {
			defer wg.Done()
			f(rank, e.bulks[rank])
		}(mesh.Rank(r))
	}

	wg.Wait()
}

type fieldKey struct {
	name string
	rank mesh.EntityRank
}

type metaData struct {
	mu         sync.Mutex
	spatialDim int
	committed  bool
	parts      map[string]*mesh.Part
	fields     map[fieldKey]*mesh.Field
}

func (m *metaData) SpatialDimension() int {
	return m.spatialDim
}

func (m *metaData) DeclarePart(
	name string,
	rank mesh.EntityRank,
) *mesh.Part {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.committed {
		log.Panicf("cannot declare part %s on a committed mesh", name)
	}

	if p, ok := m.parts[name]; ok {
		if p.EntityRank() != rank {
			log.Panicf("part %s redeclared with rank %s, was %s",
				name, rank, p.EntityRank())
		}
		return p
	}

	p := mesh.NewPart(name, rank)
	m.parts[name] = p

	return p
}

func (m *metaData) DeclareField(
	name string,
	rank mesh.EntityRank,
) *mesh.Field {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.committed {
		log.Panicf("cannot declare field %s on a committed mesh", name)
	}

	key := fieldKey{name: name, rank: rank}
	if f, ok := m.fields[key]; ok {
		return f
	}

	f := mesh.NewField(name, rank)
	m.fields[key] = f

	return f
}

func (m *metaData) GetField(
	name string,
	rank mesh.EntityRank,
) *mesh.Field {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.fields[fieldKey{name: name, rank: rank}]
}

func (m *metaData) IsCommitted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.committed
}

type pendingNode struct {
	id    mesh.EntityID
	parts []*mesh.Part
}

// bulkData is the bulk view of one rank. Entity and field storage is local
// to the rank: nodes declared here are invisible to other ranks.
type bulkData struct {
	engine *Engine
	rank   mesh.Rank

	inModification bool
	pending        []pendingNode

	parts     map[mesh.EntityID][]*mesh.Part
	fieldData map[*mesh.Field]map[mesh.EntityID][]float64
}

func (b *bulkData) ParallelRank() mesh.Rank {
	return b.rank
}

func (b *bulkData) ParallelSize() int {
	return len(b.engine.bulks)
}

func (b *bulkData) GenerateNewIDs(
	rank mesh.EntityRank,
	count int,
) []mesh.EntityID {
	if !b.engine.meta.IsCommitted() {
		log.Panic("cannot generate ids before the mesh is committed")
	}

	e := b.engine
	e.genCounts[b.rank] = count

	e.barrier.Await(func() {
		for r, c := range e.genCounts {
			if c != count {
				log.Panicf(
					"collective divergence: rank %d generates %d ids, rank %d generates %d",
					r, c, b.rank, count)
			}
		}

		block := make([]mesh.EntityID, count)
		for i := range block {
			block[i] = mesh.EntityID(e.nextID)
			e.nextID++
		}
		e.idBlock = block
	})

	// Every rank reads the block before any rank can reach the next
	// collective, so the shared slice is stable here.
	ids := make([]mesh.EntityID, count)
	copy(ids, e.idBlock)

	return ids
}

func (b *bulkData) ModificationBegin() {
	if b.inModification {
		log.Panic("modification transaction is already open")
	}

	b.engine.barrier.Await(nil)
	b.inModification = true
}

func (b *bulkData) ModificationEnd() {
	if !b.inModification {
		log.Panic("no open modification transaction")
	}

	for _, n := range b.pending {
		b.parts[n.id] = n.parts
	}
	b.pending = nil
	b.inModification = false

	b.engine.barrier.Await(nil)
}

func (b *bulkData) DeclareNode(
	id mesh.EntityID,
	parts ...*mesh.Part,
) mesh.Entity {
	if !b.inModification {
		log.Panic("DeclareNode outside of a modification transaction")
	}

	for _, p := range parts {
		if p.EntityRank() != mesh.NodeRank {
			log.Panicf("cannot declare a node into %s-rank part %s",
				p.EntityRank(), p.Name())
		}
	}

	b.pending = append(b.pending, pendingNode{id: id, parts: parts})

	return mesh.NewEntity(id)
}

func (b *bulkData) FieldData(f *mesh.Field, e mesh.Entity) []float64 {
	parts, ok := b.parts[e.ID()]
	if !ok {
		return nil
	}

	numComponents := 0
	for _, p := range parts {
		if n := f.ComponentsOnPart(p); n > numComponents {
			numComponents = n
		}
	}
	if numComponents == 0 {
		return nil
	}

	perEntity, ok := b.fieldData[f]
	if !ok {
		perEntity = make(map[mesh.EntityID][]float64)
		b.fieldData[f] = perEntity
	}

	data, ok := perEntity[e.ID()]
	if !ok {
		data = make([]float64, numComponents)
		perEntity[e.ID()] = data
	}

	return data
}
