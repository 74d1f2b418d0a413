package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/repositories"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/clients/postgres"
	apperrors "github.com/medtravel/hospitaldirectory/pkg/errors"
)

const leadsTable = "leads"

// LeadAdapter implements lead persistence in Postgres.
type LeadAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLeadAdapter creates a new lead adapter.
func NewLeadAdapter(client *postgres.Client) repositories.LeadRepository {
	return &LeadAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a lead record.
func (a *LeadAdapter) Create(ctx context.Context, lead *entities.Lead) error {
	if lead == nil {
		return apperrors.NewInternalError("lead is nil", fmt.Errorf("lead is nil"))
	}

	record := goqu.Record{
		"id":           lead.ID,
		"kind":         string(lead.Kind),
		"name":         lead.Name,
		"email":        nullString(lead.Email),
		"phone":        nullString(lead.Phone),
		"country":      nullString(lead.Country),
		"message":      nullString(lead.Message),
		"hospital_id":  nullString(lead.HospitalID),
		"doctor_id":    nullString(lead.DoctorID),
		"treatment_id": nullString(lead.TreatmentID),
		"page":         nullString(lead.Page),
		"user_agent":   nullString(lead.UserAgent),
		"created_at":   lead.CreatedAt,
	}

	query, args, err := a.db.Insert(leadsTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build lead insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create lead", err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
