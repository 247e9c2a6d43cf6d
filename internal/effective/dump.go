// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package effective

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/zeebo/xxh3"
)

// Dump writes a canonical text rendering of the model: one line per
// effective statement with its copy history and resolved references. Two
// structurally equal models produce identical dumps.
func (sc *SchemaContext) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, m := range sc.modules {
		dumpStatement(bw, m, 0)
	}
	return bw.Flush()
}

// Fingerprint hashes the canonical dump.
func (sc *SchemaContext) Fingerprint() uint64 {
	h := xxh3.New()
	_ = sc.Dump(h)
	return h.Sum64()
}

func keywordLabel(s Statement) string {
	k := s.Keyword()
	if k.IsYANG() {
		return k.Local
	}
	return k.String()
}

func resolvedLabel(s Statement) string {
	switch v := s.(type) {
	case *Type:
		out := "builtin=" + v.Builtin()
		if v.Typedef() != nil {
			out += " typedef=" + v.Typedef().QName().String()
		}
		if v.LeafrefTarget() != nil {
			out += " target=" + v.LeafrefTarget().Path().String()
		}
		for _, b := range v.IdentityBases() {
			out += " base=" + b.QName().String()
		}
		return out
	case *Uses:
		if v.Grouping() != nil {
			return "grouping=" + v.Grouping().QName().String()
		}
	case *Identity:
		var parts []string
		for _, b := range v.Bases() {
			parts = append(parts, b.QName().String())
		}
		return "bases=" + strings.Join(parts, ",")
	case *Augment:
		return "target=" + v.TargetPath().String()
	case *Deviation:
		return "target=" + v.TargetPath().String()
	case *Feature:
		return "supported=" + strconv.FormatBool(v.Supported())
	case SchemaNode:
		return "path=" + v.Path().String()
	}
	return ""
}

func dumpStatement(w io.Writer, s Statement, depth int) {
	fmt.Fprintf(w, "%s%s", strings.Repeat("  ", depth), keywordLabel(s))
	if s.RawArgument() != "" {
		fmt.Fprintf(w, " %q", s.RawArgument())
	}
	if h := s.CopyHistory(); !h.IsEmpty() {
		fmt.Fprintf(w, " [%s]", h)
	}
	if r := resolvedLabel(s); r != "" {
		fmt.Fprintf(w, " {%s}", r)
	}
	fmt.Fprintln(w)
	for _, sub := range s.Substatements() {
		dumpStatement(w, sub, depth+1)
	}
	if m, ok := s.(*Module); ok {
		for _, sm := range m.Submodules() {
			dumpStatement(w, sm, depth+1)
		}
	}
}

type jsonStatement struct {
	Keyword       string           `json:"keyword"`
	Argument      string           `json:"argument,omitempty"`
	CopyHistory   string           `json:"copyHistory,omitempty"`
	Resolved      string           `json:"resolved,omitempty"`
	Substatements []*jsonStatement `json:"substatements,omitempty"`
}

func toJSON(s Statement) *jsonStatement {
	out := &jsonStatement{
		Keyword:  keywordLabel(s),
		Argument: s.RawArgument(),
		Resolved: resolvedLabel(s),
	}
	if h := s.CopyHistory(); !h.IsEmpty() {
		out.CopyHistory = h.String()
	}
	for _, sub := range s.Substatements() {
		out.Substatements = append(out.Substatements, toJSON(sub))
	}
	if m, ok := s.(*Module); ok {
		for _, sm := range m.Submodules() {
			out.Substatements = append(out.Substatements, toJSON(sm))
		}
	}
	return out
}

// MarshalJSON renders the model as a JSON array of module trees.
func (sc *SchemaContext) MarshalJSON() ([]byte, error) {
	mods := make([]*jsonStatement, 0, len(sc.modules))
	for _, m := range sc.modules {
		mods = append(mods, toJSON(m))
	}
	return json.MarshalIndent(mods, "", "  ")
}
