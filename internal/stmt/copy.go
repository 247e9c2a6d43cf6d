package stmt

import "strings"

// CopyType names the reason a statement was copied into a new location.
type CopyType int

const (
	// AddedByUses marks statements instantiated from a grouping.
	AddedByUses CopyType = iota + 1
	// AddedByAugmentation marks statements inserted by an augment.
	AddedByAugmentation
	// AddedByUsesAugmentation marks statements inserted by an augment that was
	// itself instantiated from a grouping.
	AddedByUsesAugmentation
	// AddedByDeviation marks statements introduced by "deviate add" or
	// "deviate replace".
	AddedByDeviation
)

func (c CopyType) String() string {
	switch c {
	case AddedByUses:
		return "ADDED_BY_USES"
	case AddedByAugmentation:
		return "ADDED_BY_AUGMENTATION"
	case AddedByUsesAugmentation:
		return "ADDED_BY_USES_AUGMENTATION"
	case AddedByDeviation:
		return "ADDED_BY_DEVIATION"
	default:
		return "ORIGINAL"
	}
}

// CopyHistory is the ordered list of copy operations that produced a
// statement. The zero value describes a declared statement. Values are never
// mutated in place.
type CopyHistory struct {
	ops []CopyType
}

// Original is the history of a declared statement.
var Original = CopyHistory{}

// Append returns a new history with op recorded last.
func (h CopyHistory) Append(op CopyType) CopyHistory {
	ops := make([]CopyType, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return CopyHistory{ops: append(ops, op)}
}

// IsEmpty reports whether the statement was declared where it stands.
func (h CopyHistory) IsEmpty() bool {
	return len(h.ops) == 0
}

// Contains reports whether op appears anywhere in the history.
func (h CopyHistory) Contains(op CopyType) bool {
	for _, o := range h.ops {
		if o == op {
			return true
		}
	}
	return false
}

// Last returns the most recent copy operation, or zero for declared
// statements.
func (h CopyHistory) Last() CopyType {
	if len(h.ops) == 0 {
		return 0
	}
	return h.ops[len(h.ops)-1]
}

// Ops returns the operations oldest first.
func (h CopyHistory) Ops() []CopyType {
	out := make([]CopyType, len(h.ops))
	copy(out, h.ops)
	return out
}

// Equal reports whether two histories record the same operations.
func (h CopyHistory) Equal(o CopyHistory) bool {
	if len(h.ops) != len(o.ops) {
		return false
	}
	for i := range h.ops {
		if h.ops[i] != o.ops[i] {
			return false
		}
	}
	return true
}

func (h CopyHistory) String() string {
	if len(h.ops) == 0 {
		return CopyType(0).String()
	}
	parts := make([]string, len(h.ops))
	for i, o := range h.ops {
		parts[i] = o.String()
	}
	return strings.Join(parts, ",")
}
