package template

// Fields maps token names to typed values. It is the only data shape
// exchanged at the engine boundary: formatting consumes one, parsing
// produces one. Values are string, int or float64 per the owning token.
type Fields map[string]interface{}

// Copy returns a shallow copy of the fields
func (f Fields) Copy() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge returns a copy of the fields with the other mapping laid on top
func (f Fields) Merge(other Fields) Fields {
	out := f.Copy()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Equal reports whether both mappings hold the same keys and values
func (f Fields) Equal(other Fields) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
