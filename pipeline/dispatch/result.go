package dispatch

import (
	"context"
	"errors"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/checksum"
	"github.com/1siamBot/asset-exporter/pipeline/naming"
	"github.com/1siamBot/asset-exporter/pipeline/table"
	"github.com/1siamBot/asset-exporter/pipeline/value"
)

// Reason classifies a failed export.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMalformed
	ReasonConversionUnavailable
	ReasonNameTaken
	ReasonChecksum
	ReasonNotExportable
	// ReasonIO covers filesystem and collaborator errors outside the
	// taxonomy.
	ReasonIO
	ReasonPanic
	// ReasonCanceled marks records a canceled batch never reached.
	ReasonCanceled
)

var reasonNames = [...]string{
	ReasonNone:                  "none",
	ReasonMalformed:             "malformed",
	ReasonConversionUnavailable: "conversion_unavailable",
	ReasonNameTaken:             "name_taken",
	ReasonChecksum:              "checksum",
	ReasonNotExportable:         "not_exportable",
	ReasonIO:                    "io",
	ReasonPanic:                 "panic",
	ReasonCanceled:              "canceled",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// errPanic marks a recovered converter panic.
var errPanic = errors.New("converter panic")

// Classify maps an export error to its Reason.
func Classify(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, errPanic):
		return ReasonPanic
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, checksum.ErrConversion):
		return ReasonChecksum
	case errors.Is(err, naming.ErrNameTaken):
		return ReasonNameTaken
	case errors.Is(err, asset.ErrNotExportable):
		return ReasonNotExportable
	case errors.Is(err, asset.ErrConversionUnavailable):
		return ReasonConversionUnavailable
	case errors.Is(err, asset.ErrMalformed),
		errors.Is(err, value.ErrMissingField),
		errors.Is(err, value.ErrType):
		return ReasonMalformed
	}
	return ReasonIO
}

// Result is the outcome of exporting one record.
type Result struct {
	Name string
	Kind asset.Kind
	// Path is the written file, set only on success.
	Path   string
	Err    error
	Reason Reason
	// Table is set for catalog exports.
	Table *table.Report
}

func (r Result) OK() bool { return r.Err == nil }
