package providers

import (
	"context"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
)

// LeadNotifier tells the patient coordinators about a new lead.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, lead *entities.Lead) error
}
