package mesh

// A Selector is a predicate over parts. The probe layer builds a union
// selector over all probe parts so the owning simulation can exclude them
// from physics computation.
type Selector struct {
	parts []*Part
}

// SelectUnion builds a selector that contains every given part.
func SelectUnion(parts []*Part) Selector {
	s := Selector{parts: make([]*Part, len(parts))}
	copy(s.parts, parts)
	return s
}

// Contains tells if the part is selected.
func (s Selector) Contains(p *Part) bool {
	for _, candidate := range s.parts {
		if candidate == p {
			return true
		}
	}

	return false
}

// Union returns a selector containing the parts of both selectors.
func (s Selector) Union(other Selector) Selector {
	combined := make([]*Part, 0, len(s.parts)+len(other.parts))
	combined = append(combined, s.parts...)

	for _, p := range other.parts {
		if !s.Contains(p) {
			combined = append(combined, p)
		}
	}

	return Selector{parts: combined}
}

// Parts returns the selected parts.
func (s Selector) Parts() []*Part {
	return s.parts
}
