// Package metadiff renders a line-oriented diff of two metadata documents.
package metadiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// line accumulates the text of one output line from diff fragments.
type line struct {
	common  strings.Builder
	removed strings.Builder
	added   strings.Builder
	hasDel  bool
	hasIns  bool
}

type renderer struct {
	out strings.Builder
	cur line
}

// Lines diffs before against after and returns one line per input line,
// prefixed "= " when unchanged, or as a "- " / "+ " pair when edited.
func Lines(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var r renderer
	for _, d := range diffs {
		r.add(d)
	}
	r.flush()
	return r.out.String()
}

func (r *renderer) add(d diffmatchpatch.Diff) {
	switch d.Type {
	case diffmatchpatch.DiffEqual:
		for _, c := range d.Text {
			if c == '\n' {
				r.flush()
				continue
			}
			r.cur.common.WriteRune(c)
			r.cur.removed.WriteRune(c)
			r.cur.added.WriteRune(c)
		}
	case diffmatchpatch.DiffDelete:
		r.cur.hasDel = true
		r.cur.removed.WriteString(d.Text)
	case diffmatchpatch.DiffInsert:
		r.cur.hasIns = true
		r.cur.added.WriteString(d.Text)
	}
}

func (r *renderer) flush() {
	c := &r.cur
	if !c.hasDel && !c.hasIns {
		r.emit("= ", c.common.String())
	}
	if c.hasDel {
		r.emit("- ", c.removed.String())
	}
	if c.hasIns {
		r.emit("+ ", c.added.String())
	}
	r.cur = line{}
}

func (r *renderer) emit(prefix, text string) {
	for _, s := range strings.Split(text, "\n") {
		r.out.WriteString(prefix)
		r.out.WriteString(s)
		r.out.WriteByte('\n')
	}
}
