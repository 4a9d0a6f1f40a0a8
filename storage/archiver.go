package storage

import (
	"context"

	"github.com/snapfest/luckydraw/models"
)

// ResultArchiver writes an off-database copy of a committed DrawResult for
// after-the-fact audit. Archiving is best effort; the database row remains
// the source of truth.
type ResultArchiver interface {
	ArchiveResult(ctx context.Context, result *models.DrawResult) error
}
