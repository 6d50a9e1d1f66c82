package promos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatepasshq/gatepass-backend/pkg/db"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const redemptionConstraint = "idx_promo_redemptions_code_session"

// ResolveInput carries the cart context a promo code is evaluated
// against. Monetary amounts are integer cents.
type ResolveInput struct {
	OrgID               uuid.UUID
	EventID             uuid.UUID
	Code                string
	TicketCount         int
	TicketSubtotalCents int64
	SubtotalCents       int64
	Now                 time.Time
}

// Resolution is the outcome of evaluating a promo code. A rejection is
// not an error: ValidationMessage is set, DiscountCents is zero, and
// checkout proceeds without the code.
type Resolution struct {
	Promo             *models.PromoCode
	DiscountCents     int64
	ValidationMessage string
}

// Applied reports whether the code produced a discount.
func (r Resolution) Applied() bool {
	return r.Promo != nil && r.ValidationMessage == ""
}

// GroupResolution is the group-purchase tier outcome.
type GroupResolution struct {
	Tier          *models.GroupDiscountTier
	DiscountCents int64
}

// TotalDiscount is the promo and group discounts combined. The two
// stack additively; each is resolved exactly once.
type TotalDiscount struct {
	Promo         Resolution
	Group         GroupResolution
	DiscountCents int64
}

// Service resolves promo codes and group discount tiers and records
// redemptions.
type Service interface {
	ResolveCode(ctx context.Context, in ResolveInput) (Resolution, error)
	ResolveGroupDiscount(ctx context.Context, eventID uuid.UUID, ticketCount int, ticketSubtotalCents int64) (GroupResolution, error)
	ResolveTotalDiscount(ctx context.Context, in ResolveInput) (TotalDiscount, error)
	Redeem(ctx context.Context, tx *gorm.DB, promoCodeID uuid.UUID, sessionID string, orderID *uuid.UUID) (bool, error)
}

type service struct {
	repo PromoRepository
	logg *logger.Logger
}

// NewService builds the promo resolver.
func NewService(repo PromoRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// NormalizeCode trims and upper-cases a candidate code. Codes are
// stored normalized, so lookup and storage always agree.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *service) ResolveCode(ctx context.Context, in ResolveInput) (Resolution, error) {
	code := NormalizeCode(in.Code)
	if code == "" {
		return Resolution{}, nil
	}

	promo, err := s.repo.FindActiveByOrgAndCode(ctx, in.OrgID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Resolution{ValidationMessage: "promo code not found"}, nil
		}
		return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo code")
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if msg := rejectPromo(promo, in, now); msg != "" {
		return Resolution{Promo: promo, ValidationMessage: msg}, nil
	}

	base := in.SubtotalCents
	if promo.TicketOnly {
		base = in.TicketSubtotalCents
	}

	discount := discountAmount(promo, base)
	if discount > in.SubtotalCents {
		discount = in.SubtotalCents
	}
	return Resolution{Promo: promo, DiscountCents: discount}, nil
}

func rejectPromo(promo *models.PromoCode, in ResolveInput, now time.Time) string {
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return "promo code is not active yet"
	}
	if promo.ExpiresAt != nil && now.After(*promo.ExpiresAt) {
		return "promo code has expired"
	}
	if promo.MaxUses != nil && promo.UseCount >= *promo.MaxUses {
		return "promo code usage limit reached"
	}
	if promo.TicketOnly && in.TicketCount <= 0 {
		return "promo code applies to tickets only"
	}
	return ""
}

func discountAmount(promo *models.PromoCode, baseCents int64) int64 {
	if baseCents <= 0 {
		return 0
	}
	switch promo.DiscountType {
	case enums.DiscountTypePercent:
		return decimal.NewFromInt(baseCents).
			Mul(promo.PercentOff).
			Div(decimal.NewFromInt(100)).
			Round(0).IntPart()
	case enums.DiscountTypeFixed:
		if promo.AmountOffCents > baseCents {
			return baseCents
		}
		return promo.AmountOffCents
	default:
		return 0
	}
}

func (s *service) ResolveGroupDiscount(ctx context.Context, eventID uuid.UUID, ticketCount int, ticketSubtotalCents int64) (GroupResolution, error) {
	if eventID == uuid.Nil || ticketCount <= 0 || ticketSubtotalCents <= 0 {
		return GroupResolution{}, nil
	}

	tiers, err := s.repo.ListTiersForEvent(ctx, eventID)
	if err != nil {
		return GroupResolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group discount tiers")
	}

	// Tiers arrive ordered by min_tickets descending, so the first
	// qualifying tier is the highest one.
	for i := range tiers {
		tier := tiers[i]
		if ticketCount >= tier.MinTickets {
			discount := decimal.NewFromInt(ticketSubtotalCents).
				Mul(tier.PercentOff).
				Div(decimal.NewFromInt(100)).
				Round(0).IntPart()
			return GroupResolution{Tier: &tier, DiscountCents: discount}, nil
		}
	}
	return GroupResolution{}, nil
}

func (s *service) ResolveTotalDiscount(ctx context.Context, in ResolveInput) (TotalDiscount, error) {
	promo, err := s.ResolveCode(ctx, in)
	if err != nil {
		return TotalDiscount{}, err
	}

	group, err := s.ResolveGroupDiscount(ctx, in.EventID, in.TicketCount, in.TicketSubtotalCents)
	if err != nil {
		return TotalDiscount{}, err
	}

	total := promo.DiscountCents + group.DiscountCents
	if total > in.SubtotalCents {
		total = in.SubtotalCents
	}
	return TotalDiscount{Promo: promo, Group: group, DiscountCents: total}, nil
}

// Redeem records a redemption and bumps the usage counter inside the
// caller's transaction. A repeat call for the same session is a no-op
// reporting alreadyRedeemed, so checkout retries never double-count.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, promoCodeID uuid.UUID, sessionID string, orderID *uuid.UUID) (bool, error) {
	if promoCodeID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "promo code id required")
	}
	if sessionID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	repo := s.repo.WithTx(tx)
	redemption := &models.PromoRedemption{
		PromoCodeID: promoCodeID,
		SessionID:   sessionID,
		OrderID:     orderID,
	}
	if err := repo.InsertRedemption(ctx, redemption); err != nil {
		if db.IsUniqueViolation(err, redemptionConstraint) {
			s.logg.Info(ctx, "promo already redeemed for session")
			return true, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert promo redemption")
	}

	rows, err := repo.IncrementUseCount(ctx, promoCodeID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment promo use count")
	}
	if rows == 0 {
		return false, pkgerrors.New(pkgerrors.CodeConflict, "promo code usage limit reached")
	}
	return false, nil
}
