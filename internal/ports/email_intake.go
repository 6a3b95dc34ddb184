package ports

import (
	"context"

	"github.com/mikey/callsheet-pipeline/internal/core"
)

// EmailIntake defines the interface for receiving production emails
type EmailIntake interface {
	// ProcessEmail runs one email through the full pipeline
	ProcessEmail(ctx context.Context, email *core.EmailContent) (*core.EmailProcessingResult, error)

	// Start starts the intake service
	Start() error

	// Stop stops the intake service
	Stop() error
}
