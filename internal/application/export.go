package application

import (
	"context"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/domain"
)

// Exporter appends a finalized record to the external spreadsheet store.
type Exporter interface {
	Export(ctx context.Context, record *domain.UseCaseRecord) error
}

// NoopExporter is used when no service account is configured; submissions
// fail with a recoverable, user-visible error rather than a crash.
type NoopExporter struct{}

func (n *NoopExporter) Export(_ context.Context, _ *domain.UseCaseRecord) error {
	return domain.ErrMissingCredentials
}
