package layout

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ContentKind tells how an option's value is represented
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentImage
	ContentError
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentImage:
		return "image"
	case ContentError:
		return "error"
	default:
		return fmt.Sprintf("ContentKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name
func (k ContentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Content is the classified value of one option
type Content struct {
	Kind ContentKind
	Text string
	Err  error
}

// TextSource extracts the text lying inside an area of a page
type TextSource interface {
	TextWithin(area Rect) (string, error)
}

// Classify strips the marker glyph from raw text and decides whether what
// remains is a text answer or too short to be one, in which case the
// option must be captured as an image.
func Classify(raw, glyph string, p Params) Content {
	clean := NormalizeText(strings.ReplaceAll(raw, glyph, ""))
	if utf8.RuneCountInString(clean) < p.MinTextRunes {
		return Content{Kind: ContentImage}
	}
	return Content{Kind: ContentText, Text: clean}
}

// ReadOption extracts and classifies the text of an option box. Extraction
// failures are returned as ContentError instead of aborting the question.
func ReadOption(src TextSource, box OptionBox, p Params) Content {
	raw, err := src.TextWithin(box.Box)
	if err != nil {
		return Content{Kind: ContentError, Err: fmt.Errorf("option %d text %s: %w", box.Index, box.Box, err)}
	}
	return Classify(raw, box.Glyph(), p)
}
