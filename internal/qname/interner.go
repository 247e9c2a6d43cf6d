package qname

// Interner deduplicates the strings backing qualified names. A resolution run
// owns one unless the caller passes a longer-lived table in; either way its
// lifetime is explicit and Reset empties it.
//
// An Interner is not safe for concurrent use. Parallel runs each get their own.
type Interner struct {
	strings map[string]string
	names   map[QName]QName
}

// NewInterner creates an empty interning table.
func NewInterner() *Interner {
	return &Interner{
		strings: make(map[string]string),
		names:   make(map[QName]QName),
	}
}

// String returns the canonical copy of s.
func (in *Interner) String(s string) string {
	if c, ok := in.strings[s]; ok {
		return c
	}
	in.strings[s] = s
	return s
}

// Intern returns the canonical copy of q.
func (in *Interner) Intern(q QName) QName {
	if c, ok := in.names[q]; ok {
		return c
	}
	c := QName{
		Module: Module{
			Namespace: in.String(q.Module.Namespace),
			Revision:  in.String(q.Module.Revision),
		},
		Local: in.String(q.Local),
	}
	in.names[c] = c
	return c
}

// QName interns the name built from its parts.
func (in *Interner) QName(m Module, local string) QName {
	return in.Intern(QName{Module: m, Local: local})
}

// Len reports how many distinct names are held.
func (in *Interner) Len() int {
	return len(in.names)
}

// Reset drops every interned value.
func (in *Interner) Reset() {
	clear(in.strings)
	clear(in.names)
}
