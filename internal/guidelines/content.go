package guidelines

// FileType identifies which content representation is authoritative.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeText FileType = "text"
)

// Content is the body of a guideline: either Inline text or a Remote file.
// The closed set of implementations makes a guideline with both or neither
// representation unrepresentable.
type Content interface {
	FileType() FileType
	content()
}

// Inline is guideline text stored directly on the record.
type Inline struct {
	Text string
}

// Remote is a file held in object storage. URL is the externally resolvable
// reference; StorageKey addresses the object for download, replacement, and removal.
type Remote struct {
	URL        string
	StorageKey string
}

func (Inline) FileType() FileType { return FileTypeText }
func (Remote) FileType() FileType { return FileTypePDF }

func (Inline) content() {}
func (Remote) content() {}

// storageKey returns the object key of remote content, or an empty string.
func storageKey(c Content) string {
	if r, ok := c.(Remote); ok {
		return r.StorageKey
	}
	return ""
}
