package value

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes v as an indented key/value listing, one field per line,
// nested levels indented by a tab.
func Dump(w io.Writer, v Value) error {
	d := dumper{w: w}
	if m, err := v.AsMap(); err == nil {
		d.fields(m, 0)
	} else {
		d.line(0, "", v)
	}
	return d.err
}

// DumpString is Dump into a string.
func DumpString(v Value) string {
	var b strings.Builder
	Dump(&b, v)
	return b.String()
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) printf(depth int, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, strings.Repeat("\t", depth)+format+"\n", args...)
}

func (d *dumper) fields(m *Map, depth int) {
	for _, k := range m.keys {
		d.line(depth, k, m.vals[k])
	}
}

func (d *dumper) line(depth int, label string, v Value) {
	prefix := label
	if prefix != "" {
		prefix += " "
	}
	switch v.kind {
	case KindMap:
		d.printf(depth, "%s{%d}", prefix, v.m.Len())
		d.fields(v.m, depth+1)
	case KindSeq:
		d.printf(depth, "%s[%d]", prefix, len(v.seq))
		for i, item := range v.seq {
			d.line(depth+1, "["+strconv.Itoa(i)+"]", item)
		}
	default:
		d.printf(depth, "%s= %s", prefix, scalar(v))
	}
}

func scalar(v Value) string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.s)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return "null"
}
