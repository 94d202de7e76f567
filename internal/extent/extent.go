package extent

import (
	"bytes"
	"regexp"

	"golang.org/x/exp/slices"
)

// Top-level declarations start at column zero.
var declRegex = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?(?:function\s*\*\s*|function\s+|class\s+|const\s+|let\s+|var\s+)([A-Za-z_$][A-Za-z0-9_$]*)`)

// Extent is the span of one top-level declaration, from its first line up to
// the line before the next declaration.
type Extent struct {
	Name string

	// Byte offsets, End is exclusive
	Start, End int

	// 0-based
	StartLine, EndLine int
}

// Index partitions a buffer into declaration extents.
type Index struct {
	extents []Extent
}

func Build(file []byte) *Index {
	idx := &Index{}

	offset := 0
	for line := 0; offset < len(file); line++ {
		end := bytes.IndexByte(file[offset:], '\n')
		if end < 0 {
			end = len(file)
		} else {
			end += offset + 1
		}

		if m := declRegex.FindSubmatch(file[offset:end]); m != nil {
			idx.close(offset, line-1)

			idx.extents = append(idx.extents, Extent{
				Name:      string(m[1]),
				Start:     offset,
				StartLine: line,
			})
		}

		offset = end
	}

	lastLine := bytes.Count(file, []byte{'\n'})
	if len(file) > 0 && file[len(file)-1] == '\n' {
		lastLine--
	}
	idx.close(len(file), lastLine)

	return idx
}

func (idx *Index) close(end, endLine int) {
	if n := len(idx.extents); n > 0 {
		idx.extents[n-1].End = end
		idx.extents[n-1].EndLine = endLine
	}
}

func (idx *Index) Extents() []Extent {
	return idx.extents
}

// Lookup returns the extent containing the byte offset.
func (idx *Index) Lookup(offset int) (Extent, bool) {
	i, found := slices.BinarySearchFunc(idx.extents, offset, func(e Extent, offset int) int {
		switch {
		case offset < e.Start:
			return 1
		case offset >= e.End:
			return -1
		}
		return 0
	})
	if !found {
		return Extent{}, false
	}

	return idx.extents[i], true
}

// Name returns the name of the declaration containing offset, or "".
func (idx *Index) Name(offset int) string {
	e, _ := idx.Lookup(offset)
	return e.Name
}
