package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
)

var (
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrOptionGroupNotFound = errors.New("option group not found")
	ErrOptionItemNotFound  = errors.New("option item not found")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrConfigNotFound      = errors.New("pricing config not found")
)

// Cart shape limits. Violations are validation errors, not truncation.
const (
	MaxCartItems         = 100
	MaxQuantity          = 99
	MaxSelectionsPerItem = 20
	MaxOptionsPerGroup   = 20
)

// Service is the cart pricing engine: a pure derivation over catalog and
// config reads, safe to retry and call repeatedly.
type Service struct {
	repo Repository
}

// New constructs a Service instance.
func New(repo Repository) *Service {
	if repo == nil {
		panic("carts repo is required")
	}
	return &Service{repo: repo}
}

// Quote validates the cart against the tenant's catalog and computes the
// authoritative price breakdown. Client-submitted totals are never trusted;
// the tip is honored only when the tenant allows tips. Every validation
// failure carries a stable machine code for the API boundary.
func (s *Service) Quote(ctx context.Context, tenantID string, req QuoteRequest) (Quote, error) {
	if err := validateShape(req); err != nil {
		return Quote{}, err
	}

	cfg, err := s.repo.GetPricingConfig(ctx, tenantID)
	if errors.Is(err, ErrConfigNotFound) {
		return Quote{}, apperror.New(apperror.KindNotFound, "PRICING_CONFIG_MISSING", "tenant pricing is not configured")
	}
	if err != nil {
		return Quote{}, err
	}

	lines := make([]QuoteLine, 0, len(req.Items))
	var subtotal int64
	for i, item := range req.Items {
		line, err := s.priceItem(ctx, tenantID, i, item)
		if err != nil {
			return Quote{}, err
		}
		lines = append(lines, line)
		subtotal += line.LineTotalCents
	}

	discount, couponApplied, err := s.discountFor(ctx, tenantID, req.CouponCode, subtotal, cfg)
	if err != nil {
		return Quote{}, err
	}

	discounted := subtotal - discount
	serviceFee := roundCents(cfg.ServiceFeePercent*float64(discounted)) + cfg.ServiceFeeFixedCents
	tax := roundCents(cfg.TaxRate * float64(discounted+serviceFee))

	var tip int64
	if cfg.AllowTips && req.TipCents > 0 {
		tip = req.TipCents
	}

	return Quote{
		TenantID:        tenantID,
		Currency:        cfg.Currency,
		Lines:           lines,
		SubtotalCents:   subtotal,
		DiscountCents:   discount,
		ServiceFeeCents: serviceFee,
		TaxCents:        tax,
		TipCents:        tip,
		TotalCents:      discounted + serviceFee + tax + tip,
		CouponApplied:   couponApplied,
	}, nil
}

func validateShape(req QuoteRequest) error {
	if len(req.Items) == 0 {
		return apperror.Validationf("CART_EMPTY", "cart must contain at least one item")
	}
	if len(req.Items) > MaxCartItems {
		return apperror.Validationf("CART_TOO_LARGE", "cart may contain at most %d items", MaxCartItems)
	}
	if req.TipCents < 0 {
		return apperror.Validationf("TIP_NEGATIVE", "tip must not be negative")
	}
	for i, item := range req.Items {
		if item.MenuItemID == "" {
			return apperror.Validationf("MENU_ITEM_ID_REQUIRED", "items[%d]: menu item id is required", i)
		}
		if item.Quantity < 1 || item.Quantity > MaxQuantity {
			return apperror.Validationf("QUANTITY_INVALID", "items[%d]: quantity must be between 1 and %d", i, MaxQuantity)
		}
		if len(item.Selections) > MaxSelectionsPerItem {
			return apperror.Validationf("TOO_MANY_SELECTIONS", "items[%d]: at most %d option-group selections", i, MaxSelectionsPerItem)
		}
		for _, sel := range item.Selections {
			if len(sel.OptionIDs) > MaxOptionsPerGroup {
				return apperror.Validationf("TOO_MANY_OPTIONS", "items[%d]: at most %d options per group", i, MaxOptionsPerGroup)
			}
		}
	}
	return nil
}

func (s *Service) priceItem(ctx context.Context, tenantID string, idx int, item CartItem) (QuoteLine, error) {
	menuItem, err := s.repo.GetMenuItem(ctx, tenantID, item.MenuItemID)
	if errors.Is(err, ErrMenuItemNotFound) {
		return QuoteLine{}, apperror.Validationf("MENU_ITEM_NOT_FOUND", "items[%d]: menu item %q not found", idx, item.MenuItemID)
	}
	if err != nil {
		return QuoteLine{}, err
	}
	if !menuItem.Available {
		return QuoteLine{}, apperror.Validationf("MENU_ITEM_UNAVAILABLE", "items[%d]: menu item %q is unavailable", idx, item.MenuItemID)
	}

	attached := make(map[string]struct{}, len(menuItem.OptionGroupIDs))
	for _, id := range menuItem.OptionGroupIDs {
		attached[id] = struct{}{}
	}

	unit := menuItem.PriceCents
	for _, sel := range item.Selections {
		if _, ok := attached[sel.GroupID]; !ok {
			return QuoteLine{}, apperror.Validationf("INVALID_GROUP_FOR_ITEM", "items[%d]: group %q does not belong to menu item %q", idx, sel.GroupID, item.MenuItemID)
		}
		group, err := s.repo.GetOptionGroup(ctx, tenantID, sel.GroupID)
		if errors.Is(err, ErrOptionGroupNotFound) {
			return QuoteLine{}, apperror.Validationf("INVALID_GROUP_FOR_ITEM", "items[%d]: group %q not found", idx, sel.GroupID)
		}
		if err != nil {
			return QuoteLine{}, err
		}
		if len(sel.OptionIDs) < group.MinSelect {
			return QuoteLine{}, apperror.Validationf("GROUP_MIN_VIOLATION", "items[%d]: group %q requires at least %d selections", idx, sel.GroupID, group.MinSelect)
		}
		if group.MaxSelect > 0 && len(sel.OptionIDs) > group.MaxSelect {
			return QuoteLine{}, apperror.Validationf("GROUP_MAX_VIOLATION", "items[%d]: group %q allows at most %d selections", idx, sel.GroupID, group.MaxSelect)
		}
		for _, optionID := range sel.OptionIDs {
			option, err := s.repo.GetOptionItem(ctx, tenantID, optionID)
			if errors.Is(err, ErrOptionItemNotFound) {
				return QuoteLine{}, apperror.Validationf("OPTION_NOT_FOUND", "items[%d]: option %q not found", idx, optionID)
			}
			if err != nil {
				return QuoteLine{}, err
			}
			if !option.Active {
				return QuoteLine{}, apperror.Validationf("OPTION_INACTIVE", "items[%d]: option %q is inactive", idx, optionID)
			}
			if option.GroupID != sel.GroupID {
				return QuoteLine{}, apperror.Validationf("OPTION_WRONG_GROUP", "items[%d]: option %q does not belong to group %q", idx, optionID, sel.GroupID)
			}
			unit += option.PriceDeltaCents
		}
	}

	return QuoteLine{
		MenuItemID:     menuItem.ID,
		Name:           menuItem.Name,
		Quantity:       item.Quantity,
		UnitPriceCents: unit,
		LineTotalCents: unit * int64(item.Quantity),
	}, nil
}

// discountFor resolves the coupon and computes the discount. A coupon whose
// minSubtotal is not met is ignored rather than rejected; an unknown or
// inactive code is a validation error so the customer learns the code is bad.
func (s *Service) discountFor(ctx context.Context, tenantID, code string, subtotal int64, cfg PricingConfig) (int64, bool, error) {
	// Codes are stored uppercase and unique per tenant; entry is
	// case-insensitive.
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, false, nil
	}
	coupon, err := s.repo.GetCoupon(ctx, tenantID, code)
	if errors.Is(err, ErrCouponNotFound) {
		return 0, false, apperror.Validationf("COUPON_NOT_FOUND", "coupon %q not found", code)
	}
	if err != nil {
		return 0, false, err
	}
	if !coupon.IsActive {
		return 0, false, apperror.Validationf("COUPON_INACTIVE", "coupon %q is no longer active", code)
	}
	if coupon.Currency != "" && coupon.Currency != cfg.Currency {
		return 0, false, apperror.Validationf("CURRENCY_MISMATCH", "coupon %q is not valid for currency %s", code, cfg.Currency)
	}
	if coupon.MinSubtotalCents > 0 && subtotal < coupon.MinSubtotalCents {
		return 0, false, nil
	}

	base := subtotal
	if cfg.DiscountsApplyTo == DiscountsApplyToSubtotalService {
		base += roundCents(cfg.ServiceFeePercent*float64(subtotal)) + cfg.ServiceFeeFixedCents
	}

	var discount int64
	switch coupon.Type {
	case CouponPercent:
		discount = roundCents(coupon.Value * float64(base))
	case CouponFixed:
		discount = coupon.AmountCents
	default:
		return 0, false, fmt.Errorf("coupon %q has unknown type %q", code, coupon.Type)
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount, true, nil
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
