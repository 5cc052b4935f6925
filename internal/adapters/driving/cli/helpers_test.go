package cli

import (
	"context"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driving"
)

// fakeAsker returns a canned result and records the last request.
type fakeAsker struct {
	result  *driving.AskResult
	err     error
	lastReq driving.AskRequest
}

var _ driving.Asker = (*fakeAsker)(nil)

func (f *fakeAsker) Ask(_ context.Context, req driving.AskRequest) (*driving.AskResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeIngestor returns a canned report and records the last request.
type fakeIngestor struct {
	report  *domain.IngestReport
	err     error
	lastReq driving.IngestRequest
}

var _ driving.Ingestor = (*fakeIngestor)(nil)

func (f *fakeIngestor) Ingest(_ context.Context, req driving.IngestRequest) (*domain.IngestReport, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

// fakeAuditStore serves canned entries.
type fakeAuditStore struct {
	entries []domain.AuditLogEntry
}

var _ driven.AuditStore = (*fakeAuditStore)(nil)

func (f *fakeAuditStore) Append(_ context.Context, entry domain.AuditLogEntry) (string, error) {
	f.entries = append(f.entries, entry)
	return entry.ID, nil
}

func (f *fakeAuditStore) Get(_ context.Context, id string) (*domain.AuditLogEntry, error) {
	for i := range f.entries {
		if f.entries[i].ID == id {
			return &f.entries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAuditStore) List(_ context.Context, limit int) ([]domain.AuditLogEntry, error) {
	out := f.entries
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAuditStore) Count(_ context.Context) (int, error) { return len(f.entries), nil }
func (f *fakeAuditStore) Close() error                         { return nil }

// setupTestServices installs fakes for every service and returns a
// cleanup that removes them again.
func setupTestServices() (asker *fakeAsker, ingestor *fakeIngestor, audit *fakeAuditStore, cleanup func()) {
	asker = &fakeAsker{result: &driving.AskResult{
		Answer:        domain.Answer{Content: "canned answer"},
		CorrelationID: "corr-1",
		Model:         "test-model",
		State:         domain.StateCompleted,
	}}
	ingestor = &fakeIngestor{report: &domain.IngestReport{
		ProcessedFiles:  1,
		GeneratedChunks: 3,
	}}
	audit = &fakeAuditStore{}

	askService = asker
	ingestService = ingestor
	auditLog = audit

	return asker, ingestor, audit, func() {
		askService = nil
		ingestService = nil
		auditLog = nil
	}
}
