package melon

import (
	"fmt"
	"math"
	"regexp"
)

// fileTypeRe matches the raw file_type text. Submatch 1 is the value.
var fileTypeRe = regexp.MustCompile(`<file_type>([^<]+)</file_type>`)

// Result is the outcome of patching a container.
type Result struct {
	// Container is the patched container; Data is its encoding.
	Container *Container
	Data      []byte

	// FileType and Title are the values found in the source metadata.
	FileType string
	Title    string

	// Delta is the number of bytes the metadata block shrank by.
	Delta int
}

// Patch parses data and rewrites its file_type to TargetFileType.
func Patch(data []byte) (*Result, error) {
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return c.Patch(TargetFileType)
}

// PatchFile reads the container at path and patches it in memory.
func PatchFile(path string) (*Result, error) {
	c, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.Patch(TargetFileType)
}

// Patch replaces the file_type text with newType directly in the raw
// metadata bytes, leaving the rest of the document untouched, and adjusts
// both size fields by the resulting length delta. The pad byte is
// recomputed from the new metadata length. c is not modified.
func (c *Container) Patch(newType string) (*Result, error) {
	locs := fileTypeRe.FindAllSubmatchIndex(c.Meta, -1)
	if len(locs) != 1 {
		return nil, formatErrf("patch", ErrMatchCount, "found %d", len(locs))
	}
	start, end := locs[0][2], locs[0][3]
	old := c.Meta[start:end]
	delta := len(old) - len(newType)

	meta := make([]byte, 0, len(c.Meta)-delta)
	meta = append(meta, c.Meta[:start]...)
	meta = append(meta, newType...)
	meta = append(meta, c.Meta[end:]...)

	metaSize := int64(c.Header.MetaSize) - int64(delta)
	if metaSize != int64(len(meta)) {
		return nil, formatErrf("patch", ErrMetadata, "meta size %d does not match patched length %d", metaSize, len(meta))
	}
	size := int64(c.Header.Size) - int64(delta)
	if size > math.MaxInt32 || size < math.MinInt32 || metaSize > math.MaxInt32 {
		return nil, formatErr("patch", ErrSizeOverflow)
	}

	patched := &Container{
		Header: Header{
			Size:     int32(size),
			FormType: c.Header.FormType,
			MetaSize: int32(metaSize),
		},
		Meta:     meta,
		Payload:  c.Payload,
		FileType: newType,
		Title:    c.Title,
	}
	return &Result{
		Container: patched,
		Data:      patched.Bytes(),
		FileType:  c.FileType,
		Title:     c.Title,
		Delta:     delta,
	}, nil
}

// String summarises the size changes for logs.
func (r *Result) String() string {
	h := r.Container.Header
	return fmt.Sprintf("file_type %q -> %q, riff size %d, meta size %d", r.FileType, r.Container.FileType, h.Size, h.MetaSize)
}
