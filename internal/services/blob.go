package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/google/uuid"
)

// BlobStore is the object store behind document uploads. Both the GCS bucket
// service and the MinIO storage satisfy it; a nil store means local-only.
type BlobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

func documentObjectKey(ownerID, docID uuid.UUID, fileName string) string {
	return fmt.Sprintf("documents/%s/%s/%s", ownerID, docID, path.Base(fileName))
}

// LocalPreviewRef is the preview reference for documents that never reached
// the object store.
func LocalPreviewRef(docID uuid.UUID, fileName string) string {
	return fmt.Sprintf("local://documents/%s/%s", docID, url.PathEscape(path.Base(fileName)))
}
