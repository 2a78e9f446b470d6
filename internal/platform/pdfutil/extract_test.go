package pdfutil

import "testing"

func TestExtractTextRejectsNonPDF(t *testing.T) {
	if _, err := ExtractText([]byte("not a pdf")); err == nil {
		t.Fatalf("expected error for non-pdf input")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := collapseWhitespace("  Welcome to\n\n the   team\t")
	if got != "Welcome to the team" {
		t.Fatalf("collapseWhitespace: got=%q", got)
	}
}
