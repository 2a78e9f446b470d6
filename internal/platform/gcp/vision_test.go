package gcp

import (
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/genproto/googleapis/rpc/status"
)

func TestAnnotationText(t *testing.T) {
	cases := []struct {
		name    string
		resp    *visionpb.BatchAnnotateImagesResponse
		want    string
		wantErr bool
	}{
		{name: "nil", resp: nil},
		{name: "empty", resp: &visionpb.BatchAnnotateImagesResponse{}},
		{
			name: "collapses whitespace",
			resp: &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
				FullTextAnnotation: &visionpb.TextAnnotation{Text: "Badge  policy\nWear it\tat all times"},
			}}},
			want: "Badge policy Wear it at all times",
		},
		{
			name: "per-image error",
			resp: &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
				Error: &status.Status{Code: 3, Message: "bad image data"},
			}}},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := annotationText(tc.resp)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err: want=%v got=%v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Fatalf("text: want=%q got=%q", tc.want, got)
			}
		})
	}
}
