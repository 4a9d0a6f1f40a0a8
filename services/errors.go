package services

import "errors"

// Таксономия ошибок движка розыгрыша, используемая в HTTP-маппинге.
var (
	ErrValidationFailed = errors.New("validation failed")

	// Регистрация участий
	ErrIneligibleAnonymous = errors.New("anonymous entries cannot win under the active configuration")
	ErrEntryCapExceeded    = errors.New("participant already holds the maximum number of entries")

	// Конфигурация
	ErrNoActiveConfiguration = errors.New("no active draw configuration for this event")
	ErrNoTiersSpecified      = errors.New("at least one prize tier is required")
	ErrInvalidTierLabel      = errors.New("invalid prize tier label")
	ErrInvalidTierCount      = errors.New("prize tier winner count must be positive")
	ErrInvalidEntryCap       = errors.New("max entries per participant must be at least 1")
	ErrConfigurationConflict = errors.New("another draw configuration was saved for this event concurrently")

	// Исполнение
	ErrNoEligibleEntries     = errors.New("no eligible entries to draw from")
	ErrDrawAlreadyInProgress = errors.New("a draw is already in progress for this configuration")

	// Журнал победителей
	ErrResultNotFound = errors.New("draw result not found")
	ErrWinnerNotFound = errors.New("no matching winner found for this event and participant")
)
