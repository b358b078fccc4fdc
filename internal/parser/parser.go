// Package parser classifies simulator logs into pass, warning and failure
// outcomes.
package parser

import (
	"io"

	"simrun/internal/domain"
)

// Parser classifies a simulation log
type Parser interface {
	Classify(r io.Reader) (domain.Outcome, error)
	ClassifyFile(path string) (domain.Outcome, error)
}
