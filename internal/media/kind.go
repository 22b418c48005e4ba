package media

import "fmt"

// Kind is the category of a product media blob.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

func (k Kind) String() string { return string(k) }

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindImage || k == KindVideo
}

// Blob is an uploaded file held in memory until it is stored.
type Blob struct {
	FileName string
	Data     []byte
}

func (b Blob) displayName() string {
	if b.FileName == "" {
		return "file"
	}
	return fmt.Sprintf("file %q", b.FileName)
}
