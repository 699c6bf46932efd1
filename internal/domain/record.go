package domain

// Fields is a sparse column-name to value map written to the record store.
type Fields map[string]any

// Record is a row of a record store collection.
type Record struct {
	ID     string
	Fields Fields
}

// Merge returns a copy of f overlaid with other.
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
