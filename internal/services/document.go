package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/repos"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/gcp"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type DocumentService interface {
	List(ctx context.Context) ([]types.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	log     *logger.Logger
	docs    repos.DocumentRepo
	blobs   BlobStore
	mirror  gcp.DocumentMirror
	timeout time.Duration
}

func NewDocumentService(log *logger.Logger, docs repos.DocumentRepo, blobs BlobStore, mirror gcp.DocumentMirror, timeout time.Duration) DocumentService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &documentService{
		log:     log.With("service", "DocumentService"),
		docs:    docs,
		blobs:   blobs,
		mirror:  mirror,
		timeout: timeout,
	}
}

func (ds *documentService) List(ctx context.Context) ([]types.Document, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return ds.docs.ListByOwner(ctx, owner)
}

// Delete removes the record first; blob and mirror cleanup are best effort.
func (ds *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	owner, err := requireOwner(ctx)
	if err != nil {
		return err
	}
	doc, err := ds.docs.GetByID(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := ds.docs.Delete(ctx, owner, id); err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, ds.timeout)
	defer cancel()
	if ds.blobs != nil && !doc.LocalOnly && !strings.HasPrefix(doc.PreviewRef, "local://") {
		if err := ds.blobs.Delete(cctx, documentObjectKey(owner, doc.ID, doc.FileName)); err != nil {
			ds.log.Warn("Failed to delete document blob", "document_id", id, "error", err)
		}
	}
	if ds.mirror != nil {
		if err := ds.mirror.Delete(cctx, repos.CollectionDocuments, id.String()); err != nil {
			ds.log.Warn("Failed to delete document mirror", "document_id", id, "error", err)
		}
	}
	return nil
}
