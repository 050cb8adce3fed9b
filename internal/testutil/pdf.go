// Package testutil builds small PDF fixtures for tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// Text is a string drawn with Helvetica at a baseline position in PDF space
// (origin bottom-left).
type Text struct {
	X    float64
	Y    float64
	Size float64
	S    string
}

// PageWidth and PageHeight are the MediaBox of every generated page
const (
	PageWidth  = 612
	PageHeight = 792

	// GlyphWidth is the advance of every character, in text space units
	GlyphWidth = 500
)

// BuildPDF returns a well-formed PDF with one page per element of pages.
// The MediaBox is declared on the page tree root and inherited by pages.
func BuildPDF(pages ...[]Text) []byte {
	if len(pages) == 0 {
		pages = [][]Text{nil}
	}

	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 %d %d] >>",
		strings.Join(kids, " "), len(pages), PageWidth, PageHeight))

	widths := make([]string, 95)
	for i := range widths {
		widths[i] = fmt.Sprint(GlyphWidth)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica "+
		"/Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", strings.Join(widths, " ")))

	for i, texts := range pages {
		contentNum := 5 + 2*i
		objects = append(objects, fmt.Sprintf("<< /Type /Page /Parent 2 0 R "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentNum))

		var stream strings.Builder
		for _, t := range texts {
			size := t.Size
			if size == 0 {
				size = 12
			}
			fmt.Fprintf(&stream, "BT /F1 %g Tf %g %g Td (%s) Tj ET\n", size, t.X, t.Y, escape(t.S))
		}
		data := stream.String()
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(data), data))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// WritePDF writes BuildPDF's output to path
func WritePDF(path string, pages ...[]Text) error {
	return os.WriteFile(path, BuildPDF(pages...), 0o644)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
