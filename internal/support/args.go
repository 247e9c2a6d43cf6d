package support

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/yangpath"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func parseIdentifier(raw string) (any, error) { return qname.ParseIdentifier(raw) }
func parseRef(raw string) (any, error)        { return qname.ParseRef(raw) }

func parseDate(raw string) (any, error) {
	if !dateRe.MatchString(raw) {
		return nil, fmt.Errorf("%q is not a date in YYYY-MM-DD form", raw)
	}
	if _, err := time.Parse(time.DateOnly, raw); err != nil {
		return nil, fmt.Errorf("%q is not a valid date", raw)
	}
	return raw, nil
}

func parseBool(raw string) (any, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return nil, fmt.Errorf("%q is not true or false", raw)
}

func parseUint(raw string) (any, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a non-negative integer", raw)
	}
	return v, nil
}

func parseInt(raw string) (any, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not an integer", raw)
	}
	return v, nil
}

// parseMaxElements maps "unbounded" to nil.
func parseMaxElements(raw string) (any, error) {
	if raw == "unbounded" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, fmt.Errorf("%q is not a positive integer or \"unbounded\"", raw)
	}
	return v, nil
}

func parseFractionDigits(raw string) (any, error) {
	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil || v < 1 || v > 18 {
		return nil, fmt.Errorf("fraction-digits must be between 1 and 18, got %q", raw)
	}
	return v, nil
}

func oneOf(values ...string) func(string) (any, error) {
	return func(raw string) (any, error) {
		for _, v := range values {
			if raw == v {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("%q is not one of %s", raw, strings.Join(values, ", "))
	}
}

// parseNameList splits a key or unique argument into node names. Prefixes
// are accepted and dropped.
func parseNameList(raw string) (any, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty name list")
	}
	out := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		ref, err := qname.ParseRef(f)
		if err != nil {
			return nil, err
		}
		if seen[ref.Local] {
			return nil, fmt.Errorf("%q is listed twice", ref.Local)
		}
		seen[ref.Local] = true
		out = append(out, ref.Local)
	}
	return out, nil
}

// parseUnique keeps the descendant paths of a unique statement.
func parseUnique(raw string) (any, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty unique statement")
	}
	out := make([]yangpath.NodeID, 0, len(fields))
	for _, f := range fields {
		id, err := yangpath.ParseDescendantNodeID(f)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func parseNamespaceURI(raw string) (any, error) {
	if !strings.Contains(raw, ":") || strings.ContainsAny(raw, " \t\n") {
		return nil, fmt.Errorf("%q is not a URI", raw)
	}
	return raw, nil
}

func parseLeafrefPath(raw string) (any, error)    { return yangpath.ParseLeafrefPath(raw) }
func parseFeatureExpr(raw string) (any, error)    { return yangpath.ParseFeatureExpr(raw) }
func parseAbsoluteNodeID(raw string) (any, error) { return yangpath.ParseAbsoluteNodeID(raw) }
