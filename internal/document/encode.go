package document

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// EncodeOptions controls how a document is written back to disk.
type EncodeOptions struct {
	// Indent is repeated once per nesting level, defaults to a tab.
	Indent string
	// EscapeNonASCII writes every rune above U+007F as a \u escape.
	EscapeNonASCII bool
}

// DefaultEncodeOptions matches the formatting the catalog's documents are
// checked in with.
var DefaultEncodeOptions = EncodeOptions{
	Indent:         "\t",
	EscapeNonASCII: true,
}

// Encode renders n as indented JSON followed by a single newline.
func (n *Node) Encode(opts EncodeOptions) []byte {
	if opts.Indent == "" {
		opts.Indent = "\t"
	}
	var buf bytes.Buffer
	e := encoder{buf: &buf, opts: opts}
	e.value(n, 0)
	buf.WriteByte('\n')
	return buf.Bytes()
}

type encoder struct {
	buf  *bytes.Buffer
	opts EncodeOptions
}

func (e encoder) newline(depth int) {
	e.buf.WriteByte('\n')
	e.buf.WriteString(strings.Repeat(e.opts.Indent, depth))
}

func (e encoder) value(n *Node, depth int) {
	if n == nil {
		e.buf.WriteString("null")
		return
	}

	switch n.Kind {
	case KindNull:
		e.buf.WriteString("null")
	case KindBool:
		if n.Bool {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	case KindNumber:
		e.buf.WriteString(n.Number.String())
	case KindString:
		e.string(n.String)
	case KindArray:
		if len(n.Items) == 0 {
			e.buf.WriteString("[]")
			return
		}
		e.buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.newline(depth + 1)
			e.value(item, depth+1)
		}
		e.newline(depth)
		e.buf.WriteByte(']')
	case KindObject:
		if len(n.Members) == 0 {
			e.buf.WriteString("{}")
			return
		}
		e.buf.WriteByte('{')
		for i, m := range n.Members {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.newline(depth + 1)
			e.string(m.Key)
			e.buf.WriteString(": ")
			e.value(m.Value, depth+1)
		}
		e.newline(depth)
		e.buf.WriteByte('}')
	default:
		panic(fmt.Sprintf("document: unknown node kind %d", n.Kind))
	}
}

func (e encoder) string(s string) {
	e.buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			e.buf.WriteString(`\"`)
		case '\\':
			e.buf.WriteString(`\\`)
		case '\n':
			e.buf.WriteString(`\n`)
		case '\r':
			e.buf.WriteString(`\r`)
		case '\t':
			e.buf.WriteString(`\t`)
		case '\b':
			e.buf.WriteString(`\b`)
		case '\f':
			e.buf.WriteString(`\f`)
		default:
			switch {
			case r < 0x20:
				fmt.Fprintf(e.buf, `\u%04x`, r)
			case r < utf8.RuneSelf || !e.opts.EscapeNonASCII:
				e.buf.WriteRune(r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(e.buf, `\u%04x\u%04x`, r1, r2)
			default:
				fmt.Fprintf(e.buf, `\u%04x`, r)
			}
		}
	}
	e.buf.WriteByte('"')
}
