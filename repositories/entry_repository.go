package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/snapfest/luckydraw/models"
)

var (
	ErrEntryNotFound     = errors.New("entry not found")
	ErrEntryEventInvalid = errors.New("entry event conflict or invalid")
	ErrEntryPhotoInvalid = errors.New("entry source photo conflict or invalid")
)

type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) error
	FindByID(ctx context.Context, id int64) (*models.Entry, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Entry, error)
	CountByEvent(ctx context.Context, eventID int) (int, error)
	CountByEventAndParticipant(ctx context.Context, eventID int, participantKey string) (int, error)
	CountUniqueParticipants(ctx context.Context, eventID int) (int, error)
}

type postgresEntryRepository struct {
	db *sql.DB
}

func NewPostgresEntryRepository(db *sql.DB) EntryRepository {
	return &postgresEntryRepository{db: db}
}

func (r *postgresEntryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// participantKeySQL mirrors models.Entry.ParticipantKey: authenticated user id
// when present, device fingerprint otherwise.
const participantKeySQL = `COALESCE('user:' || participant_user_id::text, participant_fingerprint)`

func (r *postgresEntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO draw_entries
			(event_id, tenant_id, participant_user_id, participant_fingerprint,
			 display_name, is_anonymous, source_photo_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.EventID,
		entry.TenantID,
		entry.ParticipantUserID,
		entry.ParticipantFingerprint,
		entry.DisplayName,
		entry.IsAnonymous,
		entry.SourcePhotoID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "draw_entries_event_id_fkey":
				return ErrEntryEventInvalid
			case "draw_entries_source_photo_id_fkey":
				return ErrEntryPhotoInvalid
			}
		}
		return fmt.Errorf("failed to create draw entry: %w", err)
	}
	return nil
}

func (r *postgresEntryRepository) FindByID(ctx context.Context, id int64) (*models.Entry, error) {
	query := `
		SELECT id, event_id, tenant_id, participant_user_id, participant_fingerprint,
		       display_name, is_anonymous, source_photo_id, created_at
		FROM draw_entries
		WHERE id = $1`

	entry := &models.Entry{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.EventID,
		&entry.TenantID,
		&entry.ParticipantUserID,
		&entry.ParticipantFingerprint,
		&entry.DisplayName,
		&entry.IsAnonymous,
		&entry.SourcePhotoID,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to find draw entry: %w", err)
	}
	return entry, nil
}

func (r *postgresEntryRepository) ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Entry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, event_id, tenant_id, participant_user_id, participant_fingerprint,
		       display_name, is_anonymous, source_photo_id, created_at
		FROM draw_entries
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := executor.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draw entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		var entry models.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.TenantID,
			&entry.ParticipantUserID,
			&entry.ParticipantFingerprint,
			&entry.DisplayName,
			&entry.IsAnonymous,
			&entry.SourcePhotoID,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan draw entry row: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draw entry rows: %w", err)
	}
	return entries, nil
}

func (r *postgresEntryRepository) CountByEvent(ctx context.Context, eventID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM draw_entries WHERE event_id = $1`
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count draw entries: %w", err)
	}
	return count, nil
}

func (r *postgresEntryRepository) CountByEventAndParticipant(ctx context.Context, eventID int, participantKey string) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM draw_entries WHERE event_id = $1 AND %s = $2`, participantKeySQL)
	if err := r.db.QueryRowContext(ctx, query, eventID, participantKey).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participant entries: %w", err)
	}
	return count, nil
}

func (r *postgresEntryRepository) CountUniqueParticipants(ctx context.Context, eventID int) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT %s) FROM draw_entries WHERE event_id = $1`, participantKeySQL)
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unique participants: %w", err)
	}
	return count, nil
}
