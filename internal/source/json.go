package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/ctxlog"
	"github.com/specialistvlad/yangreactor/internal/stmt"
)

// JSON parses statement trees from a JSON token stream. The decoder does
// not report positions, so every statement's range is the start of the
// file.
type JSON struct{}

// Parse implements Parser.
func (JSON) Parse(ctx context.Context, filename string, src []byte) ([]*stmt.Node, hcl.Diagnostics) {
	lines := newLineIndex(filename, src)
	dec := j.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()
	r := &jsonReader{dec: dec, rng: lines.whole()}

	out, err := r.document()
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid JSON source",
			Detail:   err.Error(),
			Subject:  r.rng.Ptr(),
		}}
	}
	ctxlog.FromContext(ctx).Debug("JSON file translated.", "file", filename, "sources", len(out))
	return out, nil
}

type jsonReader struct {
	dec *j.Decoder
	rng hcl.Range
}

func (r *jsonReader) document() ([]*stmt.Node, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return nil, err
	}
	var out []*stmt.Node
	switch tok {
	case j.Delim('{'):
		s, err := r.statement()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	case j.Delim('['):
		if out, err = r.list(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("expected a statement object or a list of them, found %v", tok)
	}
	if _, err := r.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the top-level value")
	}
	return out, nil
}

// list reads statement objects up to the closing bracket.
func (r *jsonReader) list() ([]*stmt.Node, error) {
	var out []*stmt.Node
	for r.dec.More() {
		if err := r.expect(j.Delim('{')); err != nil {
			return nil, err
		}
		s, err := r.statement()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, r.expect(j.Delim(']'))
}

// statement reads the members of an object whose opening brace was consumed.
func (r *jsonReader) statement() (*stmt.Node, error) {
	var s *stmt.Node
	var subs []*stmt.Node
	seenSubs := false
	for r.dec.More() {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, found %v", tok)
		}
		if key == substatementsKey {
			if seenSubs {
				return nil, fmt.Errorf("a statement has at most one %q list", substatementsKey)
			}
			seenSubs = true
			if subs, err = r.substatements(); err != nil {
				return nil, err
			}
			continue
		}
		if s != nil {
			return nil, fmt.Errorf("statement %q also names keyword %q; each object holds one statement", s.Keyword, key)
		}
		s = &stmt.Node{Keyword: key, Source: r.rng}
		if err := r.argument(s); err != nil {
			return nil, err
		}
	}
	if err := r.expect(j.Delim('}')); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("a statement object needs one keyword key besides %q", substatementsKey)
	}
	s.Substatements = subs
	return s, nil
}

func (r *jsonReader) substatements() ([]*stmt.Node, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok {
	case nil:
		return nil, nil
	case j.Delim('['):
		return r.list()
	default:
		return nil, fmt.Errorf("%q must be a list, found %v", substatementsKey, tok)
	}
}

func (r *jsonReader) argument(s *stmt.Node) error {
	tok, err := r.dec.Token()
	if err != nil {
		return err
	}
	switch v := tok.(type) {
	case nil:
	case string:
		s.Argument, s.HasArgument = v, true
	case j.Number:
		s.Argument, s.HasArgument = v.String(), true
	case bool:
		s.Argument, s.HasArgument = strconv.FormatBool(v), true
	default:
		return fmt.Errorf("the argument of %q must be a string, number, boolean or null", s.Keyword)
	}
	return nil
}

func (r *jsonReader) expect(want j.Delim) error {
	tok, err := r.dec.Token()
	if err != nil {
		return err
	}
	if tok != want {
		return fmt.Errorf("expected %q, found %v", want, tok)
	}
	return nil
}
