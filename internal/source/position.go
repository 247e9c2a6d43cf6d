package source

import (
	"bytes"

	"github.com/hashicorp/hcl/v2"
)

// lineIndex maps 1-based line and column numbers back to byte offsets so
// that ranges built from line-oriented parsers still slice the file
// correctly.
type lineIndex struct {
	filename string
	starts   []int
	size     int
}

func newLineIndex(filename string, src []byte) *lineIndex {
	starts := []int{0}
	for i := 0; ; {
		j := bytes.IndexByte(src[i:], '\n')
		if j < 0 {
			break
		}
		i += j + 1
		starts = append(starts, i)
	}
	return &lineIndex{filename: filename, starts: starts, size: len(src)}
}

func (x *lineIndex) pos(line, column int) hcl.Pos {
	if line < 1 || line > len(x.starts) {
		return hcl.Pos{Line: line, Column: column}
	}
	b := x.starts[line-1] + column - 1
	if b > x.size {
		b = x.size
	}
	return hcl.Pos{Line: line, Column: column, Byte: b}
}

// span is the range of width bytes starting at line and column.
func (x *lineIndex) span(line, column, width int) hcl.Range {
	start := x.pos(line, column)
	end := x.pos(line, column+width)
	return hcl.Range{Filename: x.filename, Start: start, End: end}
}

// whole is the range covering the start of the file, for diagnostics the
// parser cannot place more precisely.
func (x *lineIndex) whole() hcl.Range {
	return hcl.Range{
		Filename: x.filename,
		Start:    hcl.Pos{Line: 1, Column: 1},
		End:      hcl.Pos{Line: 1, Column: 1},
	}
}
