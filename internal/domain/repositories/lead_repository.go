package repositories

import (
	"context"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
)

// LeadRepository defines the interface for lead storage.
type LeadRepository interface {
	Create(ctx context.Context, lead *entities.Lead) error
}
