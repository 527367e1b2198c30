package mesh

import "log"

// A Field is a named per-entity array of float64 components. A field only
// stores data on the parts it has been put on, with a per-part component
// count.
type Field struct {
	name       string
	rank       EntityRank
	components map[*Part]int
}

// NewField creates a field. Engine implementations call this from
// Meta.DeclareField.
func NewField(name string, rank EntityRank) *Field {
	return &Field{
		name:       name,
		rank:       rank,
		components: make(map[*Part]int),
	}
}

// Name returns the field name.
func (f *Field) Name() string {
	return f.name
}

// EntityRank returns the rank of the entities the field lives on.
func (f *Field) EntityRank() EntityRank {
	return f.rank
}

// ComponentsOnPart returns the number of components the field stores per
// entity of the part, or 0 if the field is not on the part.
func (f *Field) ComponentsOnPart(p *Part) int {
	return f.components[p]
}

// PutFieldOnPart scopes a field to a part with the given component count.
// Repeating an identical put is a no-op; changing the component count of an
// existing put is a programmer error.
func PutFieldOnPart(f *Field, p *Part, numComponents int) {
	if numComponents <= 0 {
		log.Panicf("field %s: component count must be positive, got %d",
			f.name, numComponents)
	}

	existing, ok := f.components[p]
	if ok {
		if existing != numComponents {
			log.Panicf(
				"field %s on part %s: conflicting component counts %d and %d",
				f.name, p.Name(), existing, numComponents)
		}
		return
	}

	f.components[p] = numComponents
}
