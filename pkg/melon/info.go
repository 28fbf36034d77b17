package melon

// Info describes a container for display and JSON output.
type Info struct {
	FileSize     int    `json:"file_size"`
	DeclaredSize int32  `json:"declared_size"`
	FormType     string `json:"form_type"`
	MetaSize     int32  `json:"meta_size"`
	Padded       bool   `json:"padded"`
	PayloadSize  int    `json:"payload_size"`
	FileType     string `json:"file_type"`
	Title        string `json:"title"`
	Metadata     string `json:"metadata,omitempty"`
}

// Info summarises c. Raw metadata is included only when withMeta is set.
func (c *Container) Info(withMeta bool) Info {
	info := Info{
		FileSize:     c.Len(),
		DeclaredSize: c.Header.Size,
		FormType:     c.Header.FormTypeString(),
		MetaSize:     c.Header.MetaSize,
		Padded:       c.Header.Padded(),
		PayloadSize:  len(c.Payload),
		FileType:     c.FileType,
		Title:        c.Title,
	}
	if withMeta {
		info.Metadata = string(c.Meta)
	}
	return info
}
