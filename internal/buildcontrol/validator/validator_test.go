package validator

import (
	"strings"
	"testing"

	"github.com/corpuslex/corpuslex/internal/buildcontrol"
)

func TestValidateBuildRequestOK(t *testing.T) {
	req := &buildcontrol.BuildRequest{
		StemmedPath: "/data/stemmed.txt",
		TSVPath:     "/data/raw.tsv",
		OutputDir:   "/data/index",
	}
	if err := ValidateBuildRequest(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBuildRequestMissingFields(t *testing.T) {
	req := &buildcontrol.BuildRequest{}
	err := ValidateBuildRequest(req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if ok := asValidationError(err, &verr); !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	for _, field := range []string{"stemmed_path", "tsv_path", "output_dir"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected error for field %q", field)
		}
	}
}

func TestValidateBuildRequestPathTooLong(t *testing.T) {
	req := &buildcontrol.BuildRequest{
		StemmedPath: strings.Repeat("a", maxPathLength+1),
		TSVPath:     "/data/raw.tsv",
		OutputDir:   "/data/index",
	}
	err := ValidateBuildRequest(req)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func asValidationError(err error, target **ValidationError) bool {
	if verr, ok := err.(*ValidationError); ok {
		*target = verr
		return true
	}
	return false
}
