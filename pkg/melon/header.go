package melon

import "encoding/binary"

const (
	TagRIFF = "RIFF"
	TagMETA = "META"

	// PadByte follows an odd-length metadata block. The vendor writes an
	// ASCII '0' here, not the NUL byte RIFF uses.
	PadByte byte = '0'

	// HeaderSize covers RIFF tag, RIFF size, form type, META tag and META size.
	HeaderSize = 20

	// TargetFileType is the file_type the viewer must see to render a PDF.
	TargetFileType = "pdf"

	// NoTitle is shown when the metadata carries no title.
	NoTitle = "(No title)"
)

// Header holds the declared values of the fixed container prefix.
type Header struct {
	// Size is the RIFF size field: the byte count following the field.
	Size     int32
	FormType [4]byte
	MetaSize int32
}

// FormTypeString returns the form type tag for display.
func (h Header) FormTypeString() string {
	return string(h.FormType[:])
}

// Padded reports whether an odd metadata length requires a pad byte.
func (h Header) Padded() bool {
	return h.MetaSize%2 != 0
}

func (h Header) appendTo(buf []byte) []byte {
	buf = append(buf, TagRIFF...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.Size))
	buf = append(buf, h.FormType[:]...)
	buf = append(buf, TagMETA...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.MetaSize))
	return buf
}
