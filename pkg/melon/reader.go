package melon

import (
	"encoding/binary"
	"io"
	"os"
)

// Container is a parsed melon file. Meta and Payload alias the input buffer.
type Container struct {
	Header  Header
	Meta    []byte
	Payload []byte

	// FileType and Title come from the metadata XML.
	FileType string
	Title    string
}

// ReadFile reads and parses the container at path. The file is not modified.
func ReadFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates the container layout in data and extracts its metadata.
func Parse(data []byte) (*Container, error) {
	r := cursor{data: data}

	tag, ok := r.next(4)
	if !ok {
		return nil, formatErrf("riff header", ErrTruncated, "%d bytes", len(data))
	}
	if string(tag) != TagRIFF {
		return nil, formatErrf("riff header", ErrBadRIFFTag, "got %q", tag)
	}

	var hdr Header
	size, ok := r.int32()
	if !ok {
		return nil, formatErrf("riff header", ErrTruncated, "size field")
	}
	hdr.Size = size

	form, ok := r.next(4)
	if !ok {
		return nil, formatErrf("riff header", ErrTruncated, "form type")
	}
	copy(hdr.FormType[:], form)

	tag, ok = r.next(4)
	if !ok {
		return nil, formatErrf("meta header", ErrTruncated, "chunk tag")
	}
	if string(tag) != TagMETA {
		return nil, formatErrf("meta header", ErrBadMetaTag, "got %q", tag)
	}
	metaSize, ok := r.int32()
	if !ok {
		return nil, formatErrf("meta header", ErrTruncated, "chunk size")
	}
	if metaSize < 0 {
		return nil, formatErrf("meta header", ErrTruncated, "negative chunk size %d", metaSize)
	}
	hdr.MetaSize = metaSize

	meta, ok := r.next(int(metaSize))
	if !ok {
		return nil, formatErrf("meta chunk", ErrTruncated, "declared %d bytes, %d available", metaSize, r.remaining())
	}

	fileType, title, err := Metadata(meta)
	if err != nil {
		return nil, err
	}

	if hdr.Padded() {
		pad, ok := r.next(1)
		if !ok {
			return nil, formatErrf("meta chunk", ErrBadPadding, "missing pad byte")
		}
		if pad[0] != PadByte {
			return nil, formatErrf("meta chunk", ErrBadPadding, "got %#02x, want %q", pad[0], PadByte)
		}
	}

	return &Container{
		Header:   hdr,
		Meta:     meta,
		Payload:  r.rest(),
		FileType: fileType,
		Title:    title,
	}, nil
}

// Len returns the encoded size of the container in bytes.
func (c *Container) Len() int {
	n := HeaderSize + len(c.Meta) + len(c.Payload)
	if len(c.Meta)%2 != 0 {
		n++
	}
	return n
}

// Bytes encodes the container into a new buffer.
func (c *Container) Bytes() []byte {
	buf := make([]byte, 0, c.Len())
	buf = c.Header.appendTo(buf)
	buf = append(buf, c.Meta...)
	if len(c.Meta)%2 != 0 {
		buf = append(buf, PadByte)
	}
	return append(buf, c.Payload...)
}

// WriteTo writes the encoded container to w.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.Bytes())
	return int64(n), err
}

type cursor struct {
	data []byte
	off  int
}

func (c *cursor) remaining() int { return len(c.data) - c.off }

func (c *cursor) next(n int) ([]byte, bool) {
	if n < 0 || n > c.remaining() {
		return nil, false
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, true
}

func (c *cursor) int32() (int32, bool) {
	b, ok := c.next(4)
	if !ok {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(b)), true
}

func (c *cursor) rest() []byte {
	b := c.data[c.off:]
	c.off = len(c.data)
	return b
}
