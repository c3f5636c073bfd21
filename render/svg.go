package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
)

// WriteSVG serializes a scene as a standalone SVG document.
func WriteSVG(w io.Writer, s *Scene) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" preserveAspectRatio="xMinYMin meet" style="max-width:100%%;height:auto;font:10px sans-serif">`,
		num(s.Width), num(s.Height), num(s.Width), num(s.Height))
	buf.WriteByte('\n')
	fmt.Fprintf(&buf, `<rect width="100%%" height="100%%" fill="%s"/>`, s.Background.Hex())
	buf.WriteByte('\n')

	writeNode(&buf, &s.Root, 0)

	buf.WriteString("</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// SVG returns the scene as an SVG string.
func SVG(s *Scene) string {
	var buf bytes.Buffer
	_ = WriteSVG(&buf, s)
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *Node, depth int) {
	indent := bytes.Repeat([]byte("  "), depth)
	buf.Write(indent)

	switch n.Kind {
	case KindGroup:
		buf.WriteString("<g")
		writeCommonAttrs(buf, n)
		if n.Transform != "" {
			fmt.Fprintf(buf, ` transform="%s"`, escapeXML(n.Transform))
		}
		if len(n.Children) == 0 {
			buf.WriteString("/>\n")
			return
		}
		buf.WriteString(">\n")
		for i := range n.Children {
			writeNode(buf, &n.Children[i], depth+1)
		}
		buf.Write(indent)
		buf.WriteString("</g>\n")

	case KindRect:
		fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s"`,
			num(n.Rect.X), num(n.Rect.Y), num(n.Rect.Width), num(n.Rect.Height))
		writeCommonAttrs(buf, n)
		writeFill(buf, n)
		buf.WriteString("/>\n")

	case KindPath:
		fmt.Fprintf(buf, `<path d="%s"`, escapeXML(n.Path))
		writeCommonAttrs(buf, n)
		writeFill(buf, n)
		buf.WriteString(` stroke="none"/>` + "\n")

	case KindText:
		fmt.Fprintf(buf, `<text x="%s" y="%s"`, num(n.At.X), num(n.At.Y))
		writeCommonAttrs(buf, n)
		if n.Anchor != "" {
			fmt.Fprintf(buf, ` text-anchor="%s"`, n.Anchor)
		}
		fmt.Fprintf(buf, ">%s</text>\n", escapeXML(n.Text))
	}
}

func writeCommonAttrs(buf *bytes.Buffer, n *Node) {
	if n.ID != "" {
		fmt.Fprintf(buf, ` id="%s"`, escapeXML(n.ID))
	}
	if n.Class != "" {
		fmt.Fprintf(buf, ` class="%s"`, escapeXML(n.Class))
	}
}

func writeFill(buf *bytes.Buffer, n *Node) {
	fmt.Fprintf(buf, ` fill="%s"`, n.Fill.Hex())
	if n.FillOpacity < 1 {
		fmt.Fprintf(buf, ` fill-opacity="%s"`, num(n.FillOpacity))
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return ""
	}
	return buf.String()
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
