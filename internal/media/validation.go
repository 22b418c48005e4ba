package media

import (
	"fmt"
	"strings"

	pkgerrors "github.com/futamarket/market-backend/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
)

var mimePrefixByKind = map[Kind]string{
	KindImage: "image/",
	KindVideo: "video/",
}

var kindNouns = map[Kind]string{
	KindImage: "an image",
	KindVideo: "a video",
}

// Validate sniffs the blob content and returns its MIME type. The declared
// filename extension is ignored; only the bytes decide.
func Validate(blob Blob, kind Kind) (string, error) {
	prefix, ok := mimePrefixByKind[kind]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported media kind %q", kind))
	}
	if len(blob.Data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is empty", blob.displayName())).
			WithDetails(map[string]any{"field": fieldFor(kind), "file": blob.FileName})
	}

	detected := mimetype.Detect(blob.Data)
	contentType := strings.ToLower(detected.String())
	if base, _, found := strings.Cut(contentType, ";"); found {
		contentType = strings.TrimSpace(base)
	}

	if !strings.HasPrefix(contentType, prefix) {
		return "", pkgerrors.New(
			pkgerrors.CodeValidation,
			fmt.Sprintf("%s must be %s, got %s", blob.displayName(), kindNouns[kind], contentType),
		).WithDetails(map[string]any{"field": fieldFor(kind), "file": blob.FileName, "mime": contentType})
	}
	return contentType, nil
}

// ValidateAll checks images then the optional video, stopping at the first failure.
func ValidateAll(images []Blob, video *Blob) error {
	for _, img := range images {
		if _, err := Validate(img, KindImage); err != nil {
			return err
		}
	}
	if video != nil {
		if _, err := Validate(*video, KindVideo); err != nil {
			return err
		}
	}
	return nil
}

func fieldFor(kind Kind) string {
	if kind == KindImage {
		return "images"
	}
	return "video"
}
