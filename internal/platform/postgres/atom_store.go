package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/domain"
	"github.com/micronotes/review-api/internal/platform/logger"
	"github.com/micronotes/review-api/internal/store"
)

// PostgresAtomStore implements the store.AtomStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAtomStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAtomStore creates a new PostgreSQL implementation of the AtomStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresAtomStore(db store.DBTX, logger *slog.Logger) *PostgresAtomStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAtomStore{
		db:     db,
		logger: logger.With(slog.String("component", "atom_store")),
	}
}

// Ensure PostgresAtomStore implements store.AtomStore interface
var _ store.AtomStore = (*PostgresAtomStore)(nil)

const atomColumns = `id, user_id, note_id, content, atom_type, tags,
		importance_score, difficulty_score,
		interval_days, ease_factor, review_count, next_review_at, last_review_at,
		created_at, updated_at`

// Create implements store.AtomStore.Create
// It saves a new atom to the database, handling domain validation.
func (s *PostgresAtomStore) Create(ctx context.Context, atom *domain.Atom) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := atom.Validate(); err != nil {
		log.Warn("atom validation failed during create",
			slog.String("error", err.Error()),
			slog.String("atom_id", atom.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := json.Marshal(atom.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal atom tags: %w", err)
	}

	query := `
		INSERT INTO atoms (` + atomColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		atom.ID,
		atom.UserID,
		nullableUUID(atom.NoteID),
		atom.Content,
		atom.Type,
		tags,
		atom.ImportanceScore,
		atom.DifficultyScore,
		atom.Schedule.IntervalDays,
		atom.Schedule.EaseFactor,
		atom.Schedule.ReviewCount,
		nullableTime(atom.Schedule.NextReviewAt),
		nullableTime(atom.Schedule.LastReviewAt),
		atom.CreatedAt,
		atom.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create atom",
			slog.String("error", err.Error()),
			slog.String("atom_id", atom.ID.String()),
			slog.String("user_id", atom.UserID.String()))
		return MapError(err)
	}

	log.Debug("atom created",
		slog.String("atom_id", atom.ID.String()),
		slog.String("user_id", atom.UserID.String()))
	return nil
}

// GetByID implements store.AtomStore.GetByID
// Returns store.ErrAtomNotFound if the atom does not exist.
func (s *PostgresAtomStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Atom, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + atomColumns + ` FROM atoms WHERE id = $1`

	atom, err := scanAtom(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("atom not found", slog.String("atom_id", id.String()))
			return nil, store.ErrAtomNotFound
		}
		log.Error("failed to get atom by ID",
			slog.String("error", err.Error()),
			slog.String("atom_id", id.String()))
		return nil, MapError(err)
	}

	return atom, nil
}

// GetMultiple implements store.AtomStore.GetMultiple
// It retrieves the atoms with the given IDs, preserving the supplied order.
// IDs with no matching atom are silently skipped.
func (s *PostgresAtomStore) GetMultiple(ctx context.Context, ids []uuid.UUID) ([]*domain.Atom, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + atomColumns + ` FROM atoms WHERE id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, uuidStrings(ids))
	if err != nil {
		log.Error("failed to query atoms", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	byID := make(map[uuid.UUID]*domain.Atom, len(ids))
	for rows.Next() {
		atom, err := scanAtom(rows)
		if err != nil {
			return nil, MapError(err)
		}
		byID[atom.ID] = atom
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	atoms := make([]*domain.Atom, 0, len(ids))
	for _, id := range ids {
		if atom, ok := byID[id]; ok {
			atoms = append(atoms, atom)
		}
	}
	return atoms, nil
}

// FindDueCandidates implements store.AtomStore.FindDueCandidates
// It returns up to limit atoms due at or before now, most overdue first.
// Atoms that have never been scheduled sort before everything else.
func (s *PostgresAtomStore) FindDueCandidates(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Atom, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + atomColumns + `
		FROM atoms
		WHERE user_id = $1
		  AND (next_review_at IS NULL OR next_review_at <= $2)
		ORDER BY next_review_at ASC NULLS FIRST, created_at ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now, limit)
	if err != nil {
		log.Error("failed to query due atoms",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var atoms []*domain.Atom
	for rows.Next() {
		atom, err := scanAtom(rows)
		if err != nil {
			return nil, MapError(err)
		}
		atoms = append(atoms, atom)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("due candidates loaded",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(atoms)))
	return atoms, nil
}

// UpdateSchedule implements store.AtomStore.UpdateSchedule
// It replaces the atom's review schedule state and difficulty score.
// Returns store.ErrAtomNotFound if the atom does not exist.
func (s *PostgresAtomStore) UpdateSchedule(
	ctx context.Context,
	id uuid.UUID,
	schedule domain.ReviewSchedule,
	difficulty float64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE atoms
		SET interval_days = $2,
		    ease_factor = $3,
		    review_count = $4,
		    next_review_at = $5,
		    last_review_at = $6,
		    difficulty_score = $7,
		    updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		id,
		schedule.IntervalDays,
		schedule.EaseFactor,
		schedule.ReviewCount,
		nullableTime(schedule.NextReviewAt),
		nullableTime(schedule.LastReviewAt),
		difficulty,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to update atom schedule",
			slog.String("error", err.Error()),
			slog.String("atom_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "atom"); err != nil {
		return err
	}

	log.Debug("atom schedule updated",
		slog.String("atom_id", id.String()),
		slog.Int("interval_days", schedule.IntervalDays))
	return nil
}

// WithTxAtomStore implements store.AtomStore.WithTxAtomStore
// It returns a new AtomStore that executes against the given transaction.
func (s *PostgresAtomStore) WithTxAtomStore(tx *sql.Tx) store.AtomStore {
	return &PostgresAtomStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAtom(row rowScanner) (*domain.Atom, error) {
	var (
		atom         domain.Atom
		noteID       sql.NullString
		tags         []byte
		nextReviewAt sql.NullTime
		lastReviewAt sql.NullTime
	)

	err := row.Scan(
		&atom.ID,
		&atom.UserID,
		&noteID,
		&atom.Content,
		&atom.Type,
		&tags,
		&atom.ImportanceScore,
		&atom.DifficultyScore,
		&atom.Schedule.IntervalDays,
		&atom.Schedule.EaseFactor,
		&atom.Schedule.ReviewCount,
		&nextReviewAt,
		&lastReviewAt,
		&atom.CreatedAt,
		&atom.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if noteID.Valid {
		parsed, err := uuid.Parse(noteID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid note ID in database: %w", err)
		}
		atom.NoteID = parsed
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &atom.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal atom tags: %w", err)
		}
	}
	if nextReviewAt.Valid {
		atom.Schedule.NextReviewAt = nextReviewAt.Time
	}
	if lastReviewAt.Valid {
		atom.Schedule.LastReviewAt = lastReviewAt.Time
	}

	return &atom, nil
}

// nullableTime maps a zero time to SQL NULL.
func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// nullableUUID maps the nil UUID to SQL NULL.
func nullableUUID(id uuid.UUID) sql.NullString {
	return sql.NullString{String: id.String(), Valid: id != uuid.Nil}
}

// uuidStrings renders IDs for use with ANY($1), which the pgx stdlib
// driver accepts as a text array.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
