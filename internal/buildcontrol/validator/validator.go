// Package validator provides input validation for build control requests.
// It enforces required paths and returns per-field error details.
package validator

import (
	"fmt"
	"strings"

	"github.com/corpuslex/corpuslex/internal/buildcontrol"
)

const maxPathLength = 4096

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateBuildRequest checks that the request names non-empty input and
// output paths and returns a ValidationError if not.
func ValidateBuildRequest(req *buildcontrol.BuildRequest) error {
	errs := make(map[string]string)

	if strings.TrimSpace(req.StemmedPath) == "" {
		errs["stemmed_path"] = "stemmed_path is required"
	} else if len(req.StemmedPath) > maxPathLength {
		errs["stemmed_path"] = fmt.Sprintf("stemmed_path must be at most %d characters", maxPathLength)
	}
	if strings.TrimSpace(req.TSVPath) == "" {
		errs["tsv_path"] = "tsv_path is required"
	} else if len(req.TSVPath) > maxPathLength {
		errs["tsv_path"] = fmt.Sprintf("tsv_path must be at most %d characters", maxPathLength)
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		errs["output_dir"] = "output_dir is required"
	} else if len(req.OutputDir) > maxPathLength {
		errs["output_dir"] = fmt.Sprintf("output_dir must be at most %d characters", maxPathLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
