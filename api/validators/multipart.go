package validators

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/futamarket/market-backend/pkg/errors"
)

// ParseMultipart caps the request body at maxBytes and parses the multipart
// form. URL-encoded forms are accepted without files. Oversized bodies and
// malformed forms are validation errors.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) && isURLEncoded(r) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err,
				fmt.Sprintf("request body exceeds %d MB", maxBytes>>20))
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form").
			WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}

func isURLEncoded(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-www-form-urlencoded"
}

// FormValue returns the first value of a body field and whether it was sent.
func FormValue(r *http.Request, field string) (string, bool) {
	values, ok := r.PostForm[field]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Files returns the uploaded parts for field in submission order.
func Files(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// ReadFile loads an uploaded part into memory.
func ReadFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
