package services

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
	"github.com/prepflow/practice-service/internal/utils"
)

// CheckoutGateway hands a user off to the external payment provider's hosted
// checkout page. Payment processing itself happens entirely on the provider's
// side; this service only creates the redirect.
type CheckoutGateway interface {
	CreateCheckout(ctx context.Context, userID string, plan *models.Plan) (*models.CheckoutSession, error)
}

type BillingService interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	StartCheckout(ctx context.Context, userID string, planID uint) (*models.CheckoutSession, error)
}

type billingService struct {
	repo     repositories.Repository
	checkout CheckoutGateway
	logger   utils.Logger
}

func NewBillingService(repo repositories.Repository, checkout CheckoutGateway, logger utils.Logger) BillingService {
	return &billingService{repo: repo, checkout: checkout, logger: logger}
}

func (s *billingService) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	return s.repo.Plan().ListActive(ctx)
}

func (s *billingService) StartCheckout(ctx context.Context, userID string, planID uint) (*models.CheckoutSession, error) {
	if userID == "" {
		return nil, ErrValidationFailed
	}

	plan, err := s.repo.Plan().GetByID(ctx, planID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.Active {
		return nil, ErrPlanNotFound
	}

	sess, err := s.checkout.CreateCheckout(ctx, userID, plan)
	if err != nil {
		s.logger.LogError(err, "checkout session creation failed",
			"user_id", userID,
			"plan_id", planID)
		return nil, err
	}

	s.logger.Info("checkout session created",
		"user_id", userID,
		"plan_id", planID,
		"session_id", sess.SessionID)
	return sess, nil
}

// HostedCheckout is a CheckoutGateway that builds redirect URLs onto a hosted
// checkout page, identified by plan and user.
type HostedCheckout struct {
	baseURL string
}

func NewHostedCheckout(baseURL string) *HostedCheckout {
	return &HostedCheckout{baseURL: baseURL}
}

func (h *HostedCheckout) CreateCheckout(ctx context.Context, userID string, plan *models.Plan) (*models.CheckoutSession, error) {
	sessionID := watermill.NewUUID()
	return &models.CheckoutSession{
		SessionID: sessionID,
		URL:       h.baseURL + "/checkout/" + sessionID,
	}, nil
}
