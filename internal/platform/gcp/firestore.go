package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// DocumentMirror copies records into the document database so other clients
// can read them. FIRESTORE_EMULATOR_HOST is honoured by the client library.
type DocumentMirror interface {
	Upsert(ctx context.Context, collection, id string, data map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

type firestoreMirror struct {
	client *firestore.Client
	log    *logger.Logger
}

func NewFirestoreMirror(ctx context.Context, log *logger.Logger, projectID string) (DocumentMirror, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	mirrorLog := log.With("service", "FirestoreMirror")
	mirrorLog.Info("Firestore mirror initialized", "project_id", projectID)
	return &firestoreMirror{client: client, log: mirrorLog}, nil
}

func (m *firestoreMirror) Upsert(ctx context.Context, collection, id string, data map[string]any) error {
	if _, err := m.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("firestore set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *firestoreMirror) Delete(ctx context.Context, collection, id string) error {
	if _, err := m.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *firestoreMirror) Close() error {
	return m.client.Close()
}
