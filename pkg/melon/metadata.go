package melon

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

const (
	elemFileType = "file_type"
	elemTitle    = "title"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Metadata extracts the file_type and title text from a META block.
// Both are looked up among the direct children of the root element; the
// text is what precedes the element's first child. A missing title yields
// NoTitle, a missing or empty file_type is a FormatError.
//
// The block is read as UTF-8 unless its XML declaration names another
// encoding. A leading UTF-8 byte order mark is skipped.
func Metadata(meta []byte) (fileType, title string, err error) {
	transcoded := false
	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(meta, utf8BOM)))
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, err
		}
		transcoded = true
		return enc.NewDecoder().Reader(input), nil
	}

	var (
		depth    int
		rootSeen bool
		capture  string
		inChild  bool
		text     strings.Builder
		found    = make(map[string]string, 2)
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", "", formatErrf("metadata", ErrMetadata, "%v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if rootSeen {
					return "", "", formatErrf("metadata", ErrMetadata, "multiple root elements")
				}
				rootSeen = true
			}
			depth++
			if depth == 2 && capture == "" {
				name := t.Name.Local
				if _, dup := found[name]; !dup && (name == elemFileType || name == elemTitle) {
					capture = name
					inChild = false
					text.Reset()
				}
			} else if capture != "" && depth > 2 {
				inChild = true
			}
		case xml.EndElement:
			if depth == 2 && capture != "" {
				found[capture] = text.String()
				capture = ""
			}
			depth--
		case xml.CharData:
			if depth == 2 && capture != "" && !inChild {
				text.Write(t)
			}
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return "", "", formatErrf("metadata", ErrMetadata, "text outside root element")
			}
		}
	}

	if !rootSeen {
		return "", "", formatErrf("metadata", ErrMetadata, "no root element")
	}
	if !transcoded && !utf8.Valid(meta) {
		return "", "", formatErrf("metadata", ErrMetadata, "not valid UTF-8")
	}

	fileType = found[elemFileType]
	if fileType == "" {
		return "", "", formatErr("metadata", ErrMissingFileType)
	}
	title = found[elemTitle]
	if title == "" {
		title = NoTitle
	}
	return fileType, title, nil
}
