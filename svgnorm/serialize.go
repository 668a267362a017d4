package svgnorm

import (
	"encoding/xml"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// serializer writes raw tokens back as markup.
// Elements without content are written as self-closing tags.
type serializer struct {
	b       strings.Builder
	pending bool // a start tag waits for its closing bracket
}

func (w *serializer) flush() {
	if w.pending {
		w.b.WriteByte('>')
		w.pending = false
	}
}

func (w *serializer) start(se xml.StartElement) {
	w.flush()
	w.b.WriteByte('<')
	w.b.WriteString(qualified(se.Name))
	for _, attr := range se.Attr {
		w.b.WriteByte(' ')
		w.b.WriteString(qualified(attr.Name))
		w.b.WriteString(`="`)
		w.b.WriteString(attrEscaper.Replace(attr.Value))
		w.b.WriteByte('"')
	}
	w.pending = true
}

func (w *serializer) end(ee xml.EndElement) {
	if w.pending {
		w.b.WriteString("/>")
		w.pending = false
		return
	}
	w.b.WriteString("</")
	w.b.WriteString(qualified(ee.Name))
	w.b.WriteByte('>')
}

func (w *serializer) text(s string) {
	w.flush()
	w.b.WriteString(textEscaper.Replace(s))
}

func (w *serializer) comment(s string) {
	w.flush()
	w.b.WriteString("<!--")
	w.b.WriteString(s)
	w.b.WriteString("-->")
}

func (w *serializer) procInst(p xml.ProcInst) {
	w.flush()
	w.b.WriteString("<?")
	w.b.WriteString(p.Target)
	if len(p.Inst) > 0 {
		w.b.WriteByte(' ')
		w.b.Write(p.Inst)
	}
	w.b.WriteString("?>")
}
