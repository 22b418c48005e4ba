package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	pkgerrors "github.com/futamarket/market-backend/pkg/errors"
	"github.com/futamarket/market-backend/pkg/logger"
	"github.com/futamarket/market-backend/pkg/metrics"
	"github.com/google/uuid"
)

const DefaultFolder = "futa-market"

// Backend persists a single object and returns its durable public URL.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Store uploads one blob and returns the URL to keep on the product.
type Store interface {
	Store(ctx context.Context, blob Blob, kind Kind) (string, error)
}

type UploaderParams struct {
	Backend Backend
	Folder  string
	Metrics *metrics.UploadMetrics
	Logger  *logger.Logger
}

// Uploader is the Store implementation over an object storage backend.
// It never retries and never deduplicates.
type Uploader struct {
	backend Backend
	folder  string
	metrics *metrics.UploadMetrics
	logg    *logger.Logger
	newID   func() uuid.UUID
	now     func() time.Time
}

func NewUploader(p UploaderParams) (*Uploader, error) {
	if p.Backend == nil {
		return nil, errors.New("media backend required")
	}
	folder := strings.Trim(strings.TrimSpace(p.Folder), "/")
	if folder == "" {
		folder = DefaultFolder
	}
	return &Uploader{
		backend: p.Backend,
		folder:  folder,
		metrics: p.Metrics,
		logg:    p.Logger,
		newID:   uuid.New,
		now:     time.Now,
	}, nil
}

// Store validates the blob, writes it under <folder>/<kind>/<uuid>/<name> and
// returns the backend URL. Backend failures become upload errors carrying the
// backend's message.
func (u *Uploader) Store(ctx context.Context, blob Blob, kind Kind) (string, error) {
	contentType, err := Validate(blob, kind)
	if err != nil {
		return "", err
	}

	id := u.newID()
	key := buildObjectKey(u.folder, kind, id, blob.FileName)

	start := u.now()
	url, err := u.backend.Put(ctx, key, contentType, blob.Data)
	u.metrics.Observe(kind.String(), u.now().Sub(start), err)

	if u.logg != nil {
		ctx = u.logg.WithFields(ctx, map[string]any{
			"media_kind":   kind.String(),
			"object_key":   key,
			"content_type": contentType,
			"size_bytes":   len(blob.Data),
		})
	}
	if err != nil {
		if u.logg != nil {
			u.logg.Warn(ctx, "media.upload_failed")
		}
		return "", pkgerrors.Cause(pkgerrors.CodeUpload, err)
	}
	if url == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpload, fmt.Sprintf("storage returned no url for %s", key))
	}
	if u.logg != nil {
		u.logg.Debug(ctx, "media.uploaded")
	}
	return url, nil
}

func buildObjectKey(folder string, kind Kind, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("%s/%s/%s/%s", folder, kind, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	// browsers on Windows may send full paths
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
