package yangpath

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/yangreactor/internal/qname"
)

// NodeID is a schema node identifier such as "/a:top/a:inner" (absolute) or
// "inner/leaf" (descendant).
type NodeID struct {
	Absolute bool
	Steps    []qname.Ref
}

// ParseNodeID parses an absolute or descendant schema node identifier.
func ParseNodeID(s string) (NodeID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NodeID{}, fmt.Errorf("empty schema node identifier")
	}
	id := NodeID{}
	if strings.HasPrefix(s, "/") {
		id.Absolute = true
		s = s[1:]
	}
	for _, part := range strings.Split(s, "/") {
		ref, err := qname.ParseRef(part)
		if err != nil {
			return NodeID{}, fmt.Errorf("schema node identifier %q: %w", s, err)
		}
		id.Steps = append(id.Steps, ref)
	}
	return id, nil
}

// ParseAbsoluteNodeID parses an identifier that must start with "/".
func ParseAbsoluteNodeID(s string) (NodeID, error) {
	id, err := ParseNodeID(s)
	if err != nil {
		return NodeID{}, err
	}
	if !id.Absolute {
		return NodeID{}, fmt.Errorf("schema node identifier %q must be absolute", s)
	}
	return id, nil
}

// ParseDescendantNodeID parses an identifier that must not start with "/".
func ParseDescendantNodeID(s string) (NodeID, error) {
	id, err := ParseNodeID(s)
	if err != nil {
		return NodeID{}, err
	}
	if id.Absolute {
		return NodeID{}, fmt.Errorf("schema node identifier %q must be relative", s)
	}
	return id, nil
}

func (id NodeID) String() string {
	parts := make([]string, len(id.Steps))
	for i, s := range id.Steps {
		parts[i] = s.String()
	}
	out := strings.Join(parts, "/")
	if id.Absolute {
		return "/" + out
	}
	return out
}
