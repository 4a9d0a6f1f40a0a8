package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/snapfest/luckydraw/models"
	"github.com/snapfest/luckydraw/repositories"
)

// LedgerService - read side of the winner ledger plus prize revocation.
// Appending results happens only inside draw execution; there is no public
// write path that could mutate a persisted DrawResult.
type LedgerService interface {
	GetLatestResult(ctx context.Context, eventID int) (*models.DrawResult, error)
	GetResultByID(ctx context.Context, resultID int64) (*models.DrawResult, error)
	ListResults(ctx context.Context, eventID int) ([]*models.DrawResult, error)
	RevokeWinner(ctx context.Context, input RevokeWinnerInput) (*models.WinnerRevocation, error)
}

type RevokeWinnerInput struct {
	EventID        int    `json:"event_id"`
	ParticipantKey string `json:"participant_key"`
	Reason         string `json:"reason"`
	RevokedBy      int    `json:"-"`
}

type ledgerService struct {
	resultRepo repositories.ResultRepository
	logger     *slog.Logger
}

func NewLedgerService(resultRepo repositories.ResultRepository, logger *slog.Logger) LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ledgerService{resultRepo: resultRepo, logger: logger}
}

func (s *ledgerService) GetLatestResult(ctx context.Context, eventID int) (*models.DrawResult, error) {
	result, err := s.resultRepo.FindLatestByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return result, nil
}

func (s *ledgerService) GetResultByID(ctx context.Context, resultID int64) (*models.DrawResult, error) {
	result, err := s.resultRepo.FindByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return result, nil
}

func (s *ledgerService) ListResults(ctx context.Context, eventID int) ([]*models.DrawResult, error) {
	return s.resultRepo.ListByEvent(ctx, eventID)
}

// RevokeWinner records an organizer revoking a prize as a separate append-only
// record against the winner reference. It does not re-run the draw and does
// not promote a runner-up.
func (s *ledgerService) RevokeWinner(ctx context.Context, input RevokeWinnerInput) (*models.WinnerRevocation, error) {
	if input.ParticipantKey == "" {
		return nil, fmt.Errorf("%w: participant identity is required", ErrValidationFailed)
	}

	winner, err := s.resultRepo.FindLatestWinnerByParticipant(ctx, input.EventID, input.ParticipantKey)
	if err != nil {
		if errors.Is(err, repositories.ErrWinnerNotFound) {
			return nil, ErrWinnerNotFound
		}
		return nil, err
	}

	rev := &models.WinnerRevocation{
		ResultID:  winner.ResultID,
		WinnerID:  winner.ID,
		EventID:   input.EventID,
		Reason:    input.Reason,
		RevokedBy: input.RevokedBy,
	}
	if err := s.resultRepo.CreateRevocation(ctx, rev); err != nil {
		return nil, err
	}

	s.logger.Info("winner revoked",
		slog.Int("event_id", input.EventID),
		slog.Int64("winner_id", winner.ID),
		slog.String("participant", input.ParticipantKey),
	)
	return rev, nil
}
