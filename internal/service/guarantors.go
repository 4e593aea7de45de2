package service

import (
	"context"

	"medflow-backend/internal/access"
	"medflow-backend/internal/apperrors"
	"medflow-backend/internal/models"
	"medflow-backend/internal/utils"
	"medflow-backend/internal/workflow"
)

// NewGuarantor is the input for creating a guarantor.
type NewGuarantor struct {
	Name        string  `json:"name" binding:"required"`
	ContactInfo *string `json:"contactInfo"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
}

// DefaultGuarantors are created when the store has none.
var DefaultGuarantors = []models.Guarantor{
	{Name: "Ministry of Health", ContactInfo: strPtr("123456"), Email: strPtr("moh@gov.xy"), Address: strPtr("Capital City")},
	{Name: "Private Insurance Co", ContactInfo: strPtr("987654"), Email: strPtr("claims@insurance.co"), Address: strPtr("Business District")},
}

// ListGuarantors returns every guarantor with its patient count and the sum of
// its patients' total cost.
func (s *Service) ListGuarantors(ctx context.Context) ([]models.GuarantorSummary, error) {
	summaries, err := s.store.ListGuarantorSummaries(ctx)
	if err != nil {
		return nil, apperrors.Internal("list guarantors", err)
	}
	return summaries, nil
}

func (s *Service) GetGuarantor(ctx context.Context, id uint) (*models.Guarantor, error) {
	g, err := s.store.GetGuarantor(ctx, id)
	if err != nil {
		return nil, notFound("Guarantor", "get guarantor", err)
	}
	return g, nil
}

func (s *Service) CreateGuarantor(ctx context.Context, actor access.Actor, in NewGuarantor) (*models.Guarantor, error) {
	if !actor.Authenticated() {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	g, err := buildGuarantor(in)
	if err == nil && g.Name == "" {
		err = apperrors.Validation("name", "Name is required")
	}
	if err == nil {
		if cerr := s.store.CreateGuarantor(ctx, &g); cerr != nil {
			err = apperrors.Internal("create guarantor", cerr)
		}
	}
	s.outcome("create-guarantor", err)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.ActionCreateGuarantor, models.EntityGuarantor, g.ID, g)
	return &g, nil
}

func buildGuarantor(in NewGuarantor) (models.Guarantor, error) {
	name, err := workflow.PlainText("name", in.Name)
	if err != nil {
		return models.Guarantor{}, err
	}
	g := models.Guarantor{Name: name, Email: utils.TrimOptional(in.Email)}
	if g.ContactInfo, err = workflow.PlainOptional("contactInfo", in.ContactInfo); err != nil {
		return models.Guarantor{}, err
	}
	if g.Address, err = workflow.PlainOptional("address", in.Address); err != nil {
		return models.Guarantor{}, err
	}
	return g, nil
}

// EnsureDefaultGuarantors seeds DefaultGuarantors into an empty store. It
// returns how many were created.
func (s *Service) EnsureDefaultGuarantors(ctx context.Context) (int, error) {
	n, err := s.store.CountGuarantors(ctx)
	if err != nil {
		return 0, apperrors.Internal("count guarantors", err)
	}
	if n > 0 {
		return 0, nil
	}
	for i, tmpl := range DefaultGuarantors {
		g := tmpl
		if err := s.store.CreateGuarantor(ctx, &g); err != nil {
			return i, apperrors.Internal("seed guarantor", err)
		}
		s.log.WithField("guarantor", g.Name).Info("seeded default guarantor")
	}
	return len(DefaultGuarantors), nil
}

func strPtr(s string) *string { return &s }
