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
	ErrConfigurationNotFound = errors.New("draw configuration not found")
	ErrActiveConfigConflict  = errors.New("event already has an active draw configuration")
)

type ConfigRepository interface {
	// Create inserts a new active configuration. The caller is responsible
	// for deactivating the previous one in the same transaction; the partial
	// unique index on (event_id) WHERE is_active backs this up.
	Create(ctx context.Context, exec SQLExecutor, cfg *models.DrawConfiguration) error
	Update(ctx context.Context, exec SQLExecutor, cfg *models.DrawConfiguration) error
	DeactivateByEvent(ctx context.Context, exec SQLExecutor, eventID int) error
	FindActiveByEvent(ctx context.Context, eventID int) (*models.DrawConfiguration, error)
	FindByID(ctx context.Context, exec SQLExecutor, id int) (*models.DrawConfiguration, error)
}

type postgresConfigRepository struct {
	db *sql.DB
}

func NewPostgresConfigRepository(db *sql.DB) ConfigRepository {
	return &postgresConfigRepository{db: db}
}

func (r *postgresConfigRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresConfigRepository) Create(ctx context.Context, exec SQLExecutor, cfg *models.DrawConfiguration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO draw_configurations
			(event_id, tenant_id, max_entries_per_participant, require_photo_upload,
			 prevent_duplicate_winners, allow_anonymous_winners, presentation, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		cfg.EventID,
		cfg.TenantID,
		cfg.MaxEntriesPerParticipant,
		cfg.RequirePhotoUpload,
		cfg.PreventDuplicateWinners,
		cfg.AllowAnonymousWinners,
		cfg.Presentation,
		cfg.CreatedBy,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "draw_configurations_one_active_per_event" {
				return ErrActiveConfigConflict
			}
		}
		return fmt.Errorf("failed to create draw configuration: %w", err)
	}
	cfg.IsActive = true

	return r.replaceTiers(ctx, executor, cfg)
}

// Update rewrites the mutable fields of an existing configuration in place.
// Only valid while no DrawResult references the configuration; the service
// layer enforces that and creates a new version otherwise.
func (r *postgresConfigRepository) Update(ctx context.Context, exec SQLExecutor, cfg *models.DrawConfiguration) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE draw_configurations
		SET max_entries_per_participant = $1,
		    require_photo_upload = $2,
		    prevent_duplicate_winners = $3,
		    allow_anonymous_winners = $4,
		    presentation = $5,
		    updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	err := executor.QueryRowContext(ctx, query,
		cfg.MaxEntriesPerParticipant,
		cfg.RequirePhotoUpload,
		cfg.PreventDuplicateWinners,
		cfg.AllowAnonymousWinners,
		cfg.Presentation,
		cfg.ID,
	).Scan(&cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConfigurationNotFound
		}
		return fmt.Errorf("failed to update draw configuration: %w", err)
	}

	return r.replaceTiers(ctx, executor, cfg)
}

func (r *postgresConfigRepository) replaceTiers(ctx context.Context, executor SQLExecutor, cfg *models.DrawConfiguration) error {
	if _, err := executor.ExecContext(ctx, `DELETE FROM draw_prize_tiers WHERE config_id = $1`, cfg.ID); err != nil {
		return fmt.Errorf("failed to clear prize tiers: %w", err)
	}
	for _, tier := range cfg.Tiers {
		_, err := executor.ExecContext(ctx,
			`INSERT INTO draw_prize_tiers (config_id, tier_label, winner_count) VALUES ($1, $2, $3)`,
			cfg.ID, tier.Label, tier.Count,
		)
		if err != nil {
			return fmt.Errorf("failed to insert prize tier %s: %w", tier.Label, err)
		}
	}
	return nil
}

func (r *postgresConfigRepository) DeactivateByEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`UPDATE draw_configurations SET is_active = FALSE, updated_at = NOW() WHERE event_id = $1 AND is_active`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate draw configurations: %w", err)
	}
	return nil
}

func (r *postgresConfigRepository) FindActiveByEvent(ctx context.Context, eventID int) (*models.DrawConfiguration, error) {
	query := selectConfigSQL + ` WHERE event_id = $1 AND is_active`
	return r.findOne(ctx, r.db, query, eventID)
}

func (r *postgresConfigRepository) FindByID(ctx context.Context, exec SQLExecutor, id int) (*models.DrawConfiguration, error) {
	query := selectConfigSQL + ` WHERE id = $1`
	return r.findOne(ctx, r.getExecutor(exec), query, id)
}

const selectConfigSQL = `
	SELECT id, event_id, tenant_id, max_entries_per_participant, require_photo_upload,
	       prevent_duplicate_winners, allow_anonymous_winners, presentation, is_active,
	       created_by, created_at, updated_at
	FROM draw_configurations`

func (r *postgresConfigRepository) findOne(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) (*models.DrawConfiguration, error) {
	cfg := &models.DrawConfiguration{}
	err := executor.QueryRowContext(ctx, query, args...).Scan(
		&cfg.ID,
		&cfg.EventID,
		&cfg.TenantID,
		&cfg.MaxEntriesPerParticipant,
		&cfg.RequirePhotoUpload,
		&cfg.PreventDuplicateWinners,
		&cfg.AllowAnonymousWinners,
		&cfg.Presentation,
		&cfg.IsActive,
		&cfg.CreatedBy,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigurationNotFound
		}
		return nil, fmt.Errorf("failed to find draw configuration: %w", err)
	}

	if err := r.loadTiers(ctx, executor, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *postgresConfigRepository) loadTiers(ctx context.Context, executor SQLExecutor, cfg *models.DrawConfiguration) error {
	rows, err := executor.QueryContext(ctx,
		`SELECT tier_label, winner_count FROM draw_prize_tiers WHERE config_id = $1`,
		cfg.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load prize tiers: %w", err)
	}
	defer rows.Close()

	cfg.Tiers = make([]models.PrizeTier, 0)
	for rows.Next() {
		var tier models.PrizeTier
		if err := rows.Scan(&tier.Label, &tier.Count); err != nil {
			return fmt.Errorf("failed to scan prize tier row: %w", err)
		}
		cfg.Tiers = append(cfg.Tiers, tier)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating prize tier rows: %w", err)
	}
	return nil
}
