package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/internal/domain/repositories"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
	apperrors "github.com/medtravel/hospitaldirectory/pkg/errors"
)

const (
	maxLeadNameLength    = 120
	maxLeadMessageLength = 2000
	notifyTimeout        = 5 * time.Second
)

// LeadPolicy bounds how often leads are accepted.
type LeadPolicy struct {
	PerIPLimit   int
	PerIPWindow  time.Duration
	DedupeWindow time.Duration
}

// DefaultLeadPolicy allows five submissions per address every ten minutes
// and drops identical enquiries for a day.
func DefaultLeadPolicy() LeadPolicy {
	return LeadPolicy{PerIPLimit: 5, PerIPWindow: 10 * time.Minute, DedupeWindow: 24 * time.Hour}
}

// LeadInput is a submitted form.
type LeadInput struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Country     string `json:"country"`
	Message     string `json:"message"`
	HospitalID  string `json:"hospitalId"`
	DoctorID    string `json:"doctorId"`
	TreatmentID string `json:"treatmentId"`
	Page        string `json:"page"`
}

// LeadResult reports what happened to a submission. Duplicate leads are
// acknowledged without being stored again.
type LeadResult struct {
	Lead      *entities.Lead `json:"lead"`
	Duplicate bool           `json:"duplicate"`
}

// LeadService validates, stores and announces patient enquiries.
type LeadService struct {
	repo     repositories.LeadRepository
	limiter  providers.RateLimiter
	seen     providers.CacheProvider
	notifier providers.LeadNotifier
	policy   LeadPolicy
	now      func() time.Time
}

// NewLeadService creates a lead service. notifier may be nil.
func NewLeadService(repo repositories.LeadRepository, limiter providers.RateLimiter, seen providers.CacheProvider, notifier providers.LeadNotifier, policy LeadPolicy) *LeadService {
	return &LeadService{
		repo:     repo,
		limiter:  limiter,
		seen:     seen,
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
	}
}

// Submit handles one form submission from clientIP.
func (s *LeadService) Submit(ctx context.Context, in LeadInput, clientIP, userAgent string) (*LeadResult, error) {
	logger := observability.LoggerFromContext(ctx)

	lead, err := buildLead(in)
	if err != nil {
		return nil, err
	}
	lead.UserAgent = userAgent

	if s.limiter != nil && clientIP != "" {
		ok, err := s.limiter.Allow(ctx, "lead:"+clientIP, s.policy.PerIPLimit, s.policy.PerIPWindow)
		if err != nil {
			// Accept the lead rather than lose it to a cache outage.
			logger.Warn().Err(err).Msg("Lead rate limiter unavailable")
		} else if !ok {
			return nil, apperrors.NewRateLimitedError("too many submissions, please try again later")
		}
	}

	key := dedupeKey(lead)
	if s.seen != nil {
		dup, err := s.seen.Exists(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Msg("Lead dedupe check failed")
		} else if dup {
			logger.Info().Str("kind", string(lead.Kind)).Msg("Duplicate lead suppressed")
			return &LeadResult{Lead: lead, Duplicate: true}, nil
		}
	}

	lead.ID = uuid.NewString()
	lead.CreatedAt = s.now().UTC()
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}

	if s.seen != nil {
		if err := s.seen.Set(ctx, key, []byte(lead.ID), int(s.policy.DedupeWindow.Seconds())); err != nil {
			logger.Warn().Err(err).Msg("Failed to record lead for dedupe")
		}
	}

	if s.notifier != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyLead(nctx, lead); err != nil {
			logger.Error().Err(err).Str("lead_id", lead.ID).Msg("Failed to notify coordinators")
		}
	}

	logger.Info().Str("lead_id", lead.ID).Str("kind", string(lead.Kind)).Msg("Lead captured")
	return &LeadResult{Lead: lead}, nil
}

func buildLead(in LeadInput) (*entities.Lead, error) {
	lead := &entities.Lead{
		Kind:        entities.LeadKind(strings.ToLower(strings.TrimSpace(in.Kind))),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       strings.TrimSpace(in.Phone),
		Country:     strings.TrimSpace(in.Country),
		Message:     strings.TrimSpace(in.Message),
		HospitalID:  strings.TrimSpace(in.HospitalID),
		DoctorID:    strings.TrimSpace(in.DoctorID),
		TreatmentID: strings.TrimSpace(in.TreatmentID),
		Page:        strings.TrimSpace(in.Page),
	}
	if lead.Kind == "" {
		lead.Kind = entities.LeadKindEnquiry
	}

	switch {
	case !lead.Kind.Valid():
		return nil, apperrors.NewValidationError("unknown lead kind")
	case lead.Name == "":
		return nil, apperrors.NewValidationError("name is required")
	case len([]rune(lead.Name)) > maxLeadNameLength:
		return nil, apperrors.NewValidationError("name is too long")
	case lead.Email == "" && lead.Phone == "":
		return nil, apperrors.NewValidationError("email or phone is required")
	case len([]rune(lead.Message)) > maxLeadMessageLength:
		return nil, apperrors.NewValidationError("message is too long")
	}
	if lead.Email != "" {
		addr, err := mail.ParseAddress(lead.Email)
		if err != nil || addr.Address != lead.Email {
			return nil, apperrors.NewValidationError("email is invalid")
		}
	}
	if lead.Phone != "" {
		if n := len(phoneDigits(lead.Phone)); n < 7 || n > 15 {
			return nil, apperrors.NewValidationError("phone is invalid")
		}
	}
	return lead, nil
}

func phoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dedupeKey identifies "the same person asking the same thing".
func dedupeKey(l *entities.Lead) string {
	raw := strings.Join([]string{
		string(l.Kind), l.Email, phoneDigits(l.Phone), l.HospitalID, l.DoctorID, l.TreatmentID,
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return "lead:dedupe:" + hex.EncodeToString(sum[:16])
}
