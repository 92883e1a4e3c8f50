// Package leads provides lead management functionality.
// This file defines the public API of the leads bounded context.
// Only types and interfaces defined here should be imported by other domains.
package leads

import (
	"context"
	"io"

	"leadflow_backend/internal/leads/transport"

	"github.com/google/uuid"
)

// StageUsage reports how many leads currently sit in a pipeline stage.
// The pipeline domain uses it to refuse renaming or deleting stages in use.
type StageUsage interface {
	CountLeadsInStage(ctx context.Context, stage string) int
}

// CSVImporter imports a CSV stream in one commit. The scheduler's import
// worker depends on this interface, not on the management service.
type CSVImporter interface {
	ImportCSV(ctx context.Context, r io.Reader, source string, actorID *uuid.UUID) (transport.ImportResponse, error)
}

// Note: The full leads service with all CRUD operations is intended for use
// within the HTTP handler layer only. Other domains should use the minimal
// interfaces above or define their own interfaces for the specific
// functionality they need.
