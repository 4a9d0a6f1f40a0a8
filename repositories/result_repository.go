package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/snapfest/luckydraw/models"
)

var (
	ErrResultNotFound = errors.New("draw result not found")
	ErrWinnerNotFound = errors.New("winner not found")
)

type ResultRepository interface {
	// Create persists a DrawResult with its winners and statistics snapshot.
	// Must run inside the execution transaction so no partial result is ever
	// visible.
	Create(ctx context.Context, exec SQLExecutor, result *models.DrawResult) error
	FindByID(ctx context.Context, id int64) (*models.DrawResult, error)
	FindLatestByEvent(ctx context.Context, eventID int) (*models.DrawResult, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.DrawResult, error)
	CountByConfig(ctx context.Context, exec SQLExecutor, configID int) (int, error)
	// FindLatestWinnerByParticipant locates the most recent non-revoked winner
	// row for the participant across all results of the event.
	FindLatestWinnerByParticipant(ctx context.Context, eventID int, participantKey string) (*models.Winner, error)
	CreateRevocation(ctx context.Context, rev *models.WinnerRevocation) error
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, result *models.DrawResult) error {
	executor := r.getExecutor(exec)

	// Снимок по тирам сериализуется целиком: тир, заполненный до нуля при
	// нехватке участников, из строк draw_winners потом не восстановить.
	winnersByTier, err := encodeWinnersByTier(result.Stats.WinnersByTier)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO draw_results
			(config_id, event_id, tenant_id, executed_by,
			 total_entries, unique_participants, winners_by_tier, participation_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, executed_at`

	err = executor.QueryRowContext(ctx, query,
		result.ConfigID,
		result.EventID,
		result.TenantID,
		result.ExecutedBy,
		result.Stats.TotalEntries,
		result.Stats.UniqueParticipants,
		winnersByTier,
		result.Stats.ParticipationRate,
	).Scan(&result.ID, &result.ExecutedAt)
	if err != nil {
		return fmt.Errorf("failed to create draw result: %w", err)
	}

	for i := range result.Winners {
		winner := &result.Winners[i]
		winner.ResultID = result.ID
		err := executor.QueryRowContext(ctx, `
			INSERT INTO draw_winners
				(result_id, tier_label, entry_id, participant_key, display_name, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			winner.ResultID,
			winner.Tier,
			winner.EntryID,
			winner.ParticipantKey,
			winner.DisplayName,
			winner.Position,
		).Scan(&winner.ID)
		if err != nil {
			return fmt.Errorf("failed to create draw winner (position %d): %w", winner.Position, err)
		}
	}
	return nil
}

func encodeWinnersByTier(byTier map[models.TierLabel]int) ([]byte, error) {
	if byTier == nil {
		byTier = map[models.TierLabel]int{}
	}
	data, err := json.Marshal(byTier)
	if err != nil {
		return nil, fmt.Errorf("failed to encode winners by tier: %w", err)
	}
	return data, nil
}

func decodeWinnersByTier(data []byte) (map[models.TierLabel]int, error) {
	byTier := make(map[models.TierLabel]int)
	if len(data) == 0 {
		return byTier, nil
	}
	if err := json.Unmarshal(data, &byTier); err != nil {
		return nil, fmt.Errorf("failed to decode winners by tier: %w", err)
	}
	return byTier, nil
}

const selectResultSQL = `
	SELECT id, config_id, event_id, tenant_id, executed_at, executed_by,
	       total_entries, unique_participants, winners_by_tier, participation_rate
	FROM draw_results`

func (r *postgresResultRepository) FindByID(ctx context.Context, id int64) (*models.DrawResult, error) {
	return r.findOne(ctx, selectResultSQL+` WHERE id = $1`, id)
}

func (r *postgresResultRepository) FindLatestByEvent(ctx context.Context, eventID int) (*models.DrawResult, error) {
	return r.findOne(ctx, selectResultSQL+` WHERE event_id = $1 ORDER BY executed_at DESC, id DESC LIMIT 1`, eventID)
}

func (r *postgresResultRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.DrawResult, error) {
	result := &models.DrawResult{}
	err := r.scanResult(r.db.QueryRowContext(ctx, query, args...), result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to find draw result: %w", err)
	}
	if err := r.loadWinners(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresResultRepository) scanResult(rowScanner interface {
	Scan(dest ...interface{}) error
}, result *models.DrawResult) error {
	var winnersByTier []byte
	err := rowScanner.Scan(
		&result.ID,
		&result.ConfigID,
		&result.EventID,
		&result.TenantID,
		&result.ExecutedAt,
		&result.ExecutedBy,
		&result.Stats.TotalEntries,
		&result.Stats.UniqueParticipants,
		&winnersByTier,
		&result.Stats.ParticipationRate,
	)
	if err != nil {
		return err
	}
	result.Stats.WinnersByTier, err = decodeWinnersByTier(winnersByTier)
	return err
}

func (r *postgresResultRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.DrawResult, error) {
	rows, err := r.db.QueryContext(ctx, selectResultSQL+` WHERE event_id = $1 ORDER BY executed_at DESC, id DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draw results: %w", err)
	}
	defer rows.Close()

	results := make([]*models.DrawResult, 0)
	for rows.Next() {
		var result models.DrawResult
		if err := r.scanResult(rows, &result); err != nil {
			return nil, fmt.Errorf("failed to scan draw result row: %w", err)
		}
		results = append(results, &result)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draw result rows: %w", err)
	}

	for _, result := range results {
		if err := r.loadWinners(ctx, result); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// loadWinners attaches winner rows in selection order, with any revocation
// joined in so displays can grey out a revoked winner.
func (r *postgresResultRepository) loadWinners(ctx context.Context, result *models.DrawResult) error {
	query := `
		SELECT w.id, w.result_id, w.tier_label, w.entry_id, w.participant_key,
		       w.display_name, w.position, rv.id IS NOT NULL, rv.reason
		FROM draw_winners w
		LEFT JOIN winner_revocations rv ON rv.winner_id = w.id
		WHERE w.result_id = $1
		ORDER BY w.position ASC`

	rows, err := r.db.QueryContext(ctx, query, result.ID)
	if err != nil {
		return fmt.Errorf("failed to load draw winners: %w", err)
	}
	defer rows.Close()

	result.Winners = make([]models.Winner, 0)
	for rows.Next() {
		var winner models.Winner
		if err := rows.Scan(
			&winner.ID,
			&winner.ResultID,
			&winner.Tier,
			&winner.EntryID,
			&winner.ParticipantKey,
			&winner.DisplayName,
			&winner.Position,
			&winner.Revoked,
			&winner.RevokedReason,
		); err != nil {
			return fmt.Errorf("failed to scan draw winner row: %w", err)
		}
		result.Winners = append(result.Winners, winner)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating draw winner rows: %w", err)
	}
	return nil
}

func (r *postgresResultRepository) CountByConfig(ctx context.Context, exec SQLExecutor, configID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	query := `SELECT COUNT(*) FROM draw_results WHERE config_id = $1`
	if err := executor.QueryRowContext(ctx, query, configID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count draw results by config: %w", err)
	}
	return count, nil
}

func (r *postgresResultRepository) FindLatestWinnerByParticipant(ctx context.Context, eventID int, participantKey string) (*models.Winner, error) {
	query := `
		SELECT w.id, w.result_id, w.tier_label, w.entry_id, w.participant_key,
		       w.display_name, w.position
		FROM draw_winners w
		JOIN draw_results r ON r.id = w.result_id
		LEFT JOIN winner_revocations rv ON rv.winner_id = w.id
		WHERE r.event_id = $1 AND w.participant_key = $2 AND rv.id IS NULL
		ORDER BY r.executed_at DESC, w.position ASC
		LIMIT 1`

	winner := &models.Winner{}
	err := r.db.QueryRowContext(ctx, query, eventID, participantKey).Scan(
		&winner.ID,
		&winner.ResultID,
		&winner.Tier,
		&winner.EntryID,
		&winner.ParticipantKey,
		&winner.DisplayName,
		&winner.Position,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWinnerNotFound
		}
		return nil, fmt.Errorf("failed to find winner by participant: %w", err)
	}
	return winner, nil
}

func (r *postgresResultRepository) CreateRevocation(ctx context.Context, rev *models.WinnerRevocation) error {
	query := `
		INSERT INTO winner_revocations (result_id, winner_id, event_id, reason, revoked_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		rev.ResultID,
		rev.WinnerID,
		rev.EventID,
		rev.Reason,
		rev.RevokedBy,
	).Scan(&rev.ID, &rev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create winner revocation: %w", err)
	}
	return nil
}
