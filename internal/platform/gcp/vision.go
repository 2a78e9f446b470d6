package gcp

import (
	"context"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// TextDetector reads printed text out of image bytes.
type TextDetector interface {
	DetectText(ctx context.Context, img []byte, mimeType string) (string, error)
	Close() error
}

type visionDetector struct {
	client *vision.ImageAnnotatorClient
	log    *logger.Logger
}

func NewVisionDetector(ctx context.Context, log *logger.Logger) (TextDetector, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	detLog := log.With("service", "VisionDetector")
	detLog.Info("Vision OCR initialized")
	return &visionDetector{client: client, log: detLog}, nil
}

func (d *visionDetector) DetectText(ctx context.Context, img []byte, mimeType string) (string, error) {
	if len(img) == 0 {
		return "", nil
	}
	req := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{{
		Image:    &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
	}}}
	resp, err := d.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	return annotationText(resp)
}

// annotationText pulls the full-text annotation out of a single-image
// response. No text is not an error.
func annotationText(resp *visionpb.BatchAnnotateImagesResponse) (string, error) {
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r.Error.Message)
	}
	if fta := r.FullTextAnnotation; fta != nil {
		return strings.Join(strings.Fields(fta.Text), " "), nil
	}
	return "", nil
}

func (d *visionDetector) Close() error {
	return d.client.Close()
}
