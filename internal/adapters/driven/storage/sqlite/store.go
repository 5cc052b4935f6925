package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lore-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// audit and conversation store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.lore/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lore", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// AuditStore returns an AuditStore interface backed by this store.
func (s *Store) AuditStore() driven.AuditStore {
	return &auditStore{store: s}
}

// MemoryStore returns a MemoryStore interface backed by this store.
func (s *Store) MemoryStore() driven.MemoryStore {
	return &memoryStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Audit Store ====================

// auditStore implements driven.AuditStore.
type auditStore struct {
	store *Store
}

var _ driven.AuditStore = (*auditStore)(nil)

// Append persists an audit entry and returns its assigned ID.
func (s *auditStore) Append(ctx context.Context, entry domain.AuditLogEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	citationsJSON, err := json.Marshal(entry.CitationIDs)
	if err != nil {
		return "", fmt.Errorf("marshalling citation IDs: %w", err)
	}
	traceJSON, err := json.Marshal(entry.Trace)
	if err != nil {
		return "", fmt.Errorf("marshalling trace: %w", err)
	}
	moderationJSON, err := json.Marshal(entry.Moderation)
	if err != nil {
		return "", fmt.Errorf("marshalling moderation result: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO audit_log
			(id, correlation_id, operation, prompt_digest, model, question,
			 answer_content, citation_ids, trace, moderation,
			 input_tokens, output_tokens, duration_ns, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.CorrelationID, string(entry.Operation), entry.PromptDigest,
		entry.Model, entry.Question, entry.AnswerContent,
		string(citationsJSON), string(traceJSON), string(moderationJSON),
		entry.InputTokens, entry.OutputTokens, int64(entry.Duration),
		string(entry.State), entry.CreatedAt)

	if err != nil {
		return "", fmt.Errorf("saving audit entry: %w", err)
	}
	return entry.ID, nil
}

// Get retrieves an audit entry by ID.
func (s *auditStore) Get(ctx context.Context, id string) (*domain.AuditLogEntry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, correlation_id, operation, prompt_digest, model, question,
			answer_content, citation_ids, trace, moderation,
			input_tokens, output_tokens, duration_ns, state, created_at
		FROM audit_log WHERE id = ?
	`, id)

	entry, err := scanAuditEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return entry, err
}

// List returns the most recent audit entries, newest first.
func (s *auditStore) List(ctx context.Context, limit int) ([]domain.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, correlation_id, operation, prompt_digest, model, question,
			answer_content, citation_ids, trace, moderation,
			input_tokens, output_tokens, duration_ns, state, created_at
		FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditLogEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanAuditEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}
	return entries, nil
}

// Count returns the total number of audit entries.
func (s *auditStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_log").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting audit entries: %w", err)
	}
	return count, nil
}

// Close is a no-op; the parent store owns the connection.
func (s *auditStore) Close() error {
	return nil
}

// scanAuditEntry scans one audit row through the given scan function,
// shared between QueryRow and Rows iteration.
func scanAuditEntry(scan func(dest ...any) error) (*domain.AuditLogEntry, error) {
	var entry domain.AuditLogEntry
	var operation, state, citationsJSON, traceJSON, moderationJSON string
	var durationNs int64

	if err := scan(&entry.ID, &entry.CorrelationID, &operation, &entry.PromptDigest,
		&entry.Model, &entry.Question, &entry.AnswerContent,
		&citationsJSON, &traceJSON, &moderationJSON,
		&entry.InputTokens, &entry.OutputTokens, &durationNs, &state, &entry.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning audit entry: %w", err)
	}

	entry.Operation = domain.Intent(operation)
	entry.State = domain.PipelineState(state)
	entry.Duration = time.Duration(durationNs)

	if err := json.Unmarshal([]byte(citationsJSON), &entry.CitationIDs); err != nil {
		return nil, fmt.Errorf("unmarshaling citation IDs: %w", err)
	}
	if err := json.Unmarshal([]byte(traceJSON), &entry.Trace); err != nil {
		return nil, fmt.Errorf("unmarshaling trace: %w", err)
	}
	if err := json.Unmarshal([]byte(moderationJSON), &entry.Moderation); err != nil {
		return nil, fmt.Errorf("unmarshaling moderation result: %w", err)
	}

	return &entry, nil
}

// ==================== Memory Store ====================

// memoryStore implements driven.MemoryStore.
type memoryStore struct {
	store *Store
}

var _ driven.MemoryStore = (*memoryStore)(nil)

// AppendTurn persists a conversation turn.
func (s *memoryStore) AppendTurn(ctx context.Context, turn domain.ConversationTurn) error {
	if turn.ConversationID == "" {
		return fmt.Errorf("%w: conversation ID is empty", domain.ErrInvalidInput)
	}
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversation_turns (id, conversation_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, turn.ID, turn.ConversationID, turn.Role, turn.Content, turn.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving conversation turn: %w", err)
	}
	return nil
}

// Turns returns up to limit most recent turns for a conversation,
// ordered oldest first.
func (s *memoryStore) Turns(ctx context.Context, conversationID string, limit int) ([]domain.ConversationTurn, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	// Grab the newest turns, then flip to chronological order.
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM conversation_turns
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying conversation turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.ConversationTurn //nolint:prealloc // size unknown from query
	for rows.Next() {
		var turn domain.ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.ConversationID, &turn.Role,
			&turn.Content, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversation turns: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// SavePersona stores or updates a persona profile.
func (s *memoryStore) SavePersona(ctx context.Context, persona domain.PersonaProfile) error {
	if persona.ID == "" {
		return fmt.Errorf("%w: persona ID is empty", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO personas (id, name, description)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description
	`, persona.ID, persona.Name, persona.Description)

	if err != nil {
		return fmt.Errorf("saving persona: %w", err)
	}
	return nil
}

// Persona retrieves a persona profile by ID.
func (s *memoryStore) Persona(ctx context.Context, id string) (*domain.PersonaProfile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, description FROM personas WHERE id = ?
	`, id)

	var persona domain.PersonaProfile
	if err := row.Scan(&persona.ID, &persona.Name, &persona.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning persona: %w", err)
	}
	return &persona, nil
}

// SavePolicy stores or updates a policy document.
func (s *memoryStore) SavePolicy(ctx context.Context, policy domain.PolicyDocument) error {
	if policy.ID == "" {
		return fmt.Errorf("%w: policy ID is empty", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO policies (id, name, hard_fail_on_block, hard_fail_on_grounding, redact_audit_content)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			hard_fail_on_block = excluded.hard_fail_on_block,
			hard_fail_on_grounding = excluded.hard_fail_on_grounding,
			redact_audit_content = excluded.redact_audit_content
	`, policy.ID, policy.Name, policy.HardFailOnBlock, policy.HardFailOnGrounding, policy.RedactAuditContent)

	if err != nil {
		return fmt.Errorf("saving policy: %w", err)
	}
	return nil
}

// Policy retrieves a policy document by ID.
func (s *memoryStore) Policy(ctx context.Context, id string) (*domain.PolicyDocument, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, hard_fail_on_block, hard_fail_on_grounding, redact_audit_content
		FROM policies WHERE id = ?
	`, id)

	var policy domain.PolicyDocument
	if err := row.Scan(&policy.ID, &policy.Name, &policy.HardFailOnBlock,
		&policy.HardFailOnGrounding, &policy.RedactAuditContent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning policy: %w", err)
	}
	return &policy, nil
}

// Close is a no-op; the parent store owns the connection.
func (s *memoryStore) Close() error {
	return nil
}
