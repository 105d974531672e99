package service

import "context"

// MenuItem is a sellable menu entry. PriceCents is the unit base price in
// minor currency units.
type MenuItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	PriceCents     int64    `json:"priceCents"`
	Available      bool     `json:"available"`
	OptionGroupIDs []string `json:"optionGroupIds,omitempty"`
}

// OptionGroup bounds how many options a customer picks from it.
type OptionGroup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MinSelect int    `json:"minSelect"`
	MaxSelect int    `json:"maxSelect"`
}

// OptionItem is one choice within a group; its price delta is added to the
// unit price of the menu item it decorates.
type OptionItem struct {
	ID              string `json:"id"`
	GroupID         string `json:"groupId"`
	Name            string `json:"name"`
	PriceDeltaCents int64  `json:"priceDeltaCents"`
	Active          bool   `json:"active"`
}

// CouponType discriminates how a coupon's value is interpreted.
type CouponType string

const (
	CouponPercent CouponType = "percent"
	CouponFixed   CouponType = "fixed"
)

// Coupon is a discount definition. Percent coupons carry Value as a fraction
// (0.10 for 10%); fixed coupons carry AmountCents. Currency, when set,
// restricts the coupon to tenants priced in that currency.
type Coupon struct {
	Code             string     `json:"code"`
	Type             CouponType `json:"type"`
	Value            float64    `json:"value,omitempty"`
	AmountCents      int64      `json:"amountCents,omitempty"`
	MinSubtotalCents int64      `json:"minSubtotalCents,omitempty"`
	IsActive         bool       `json:"isActive"`
	Currency         string     `json:"currency,omitempty"`
}

// DiscountBase selects what a coupon discounts against.
type DiscountBase string

const (
	DiscountsApplyToSubtotal        DiscountBase = "subtotal"
	DiscountsApplyToSubtotalService DiscountBase = "subtotal_plus_service"
)

// PricingConfig is the tenant's pricing knobs. Rates are fractions; fixed
// amounts are cents. The document is schema-validated on load because it is
// written by tenant admins, not by this service.
type PricingConfig struct {
	Currency             string       `json:"currency"`
	TaxRate              float64      `json:"taxRate"`
	ServiceFeePercent    float64      `json:"serviceFeePercent"`
	ServiceFeeFixedCents int64        `json:"serviceFeeFixedCents"`
	AllowTips            bool         `json:"allowTips"`
	DiscountsApplyTo     DiscountBase `json:"discountsApplyTo,omitempty"`
}

// GroupSelection is one option-group choice on a cart item.
type GroupSelection struct {
	GroupID   string   `json:"groupId"`
	OptionIDs []string `json:"optionIds"`
}

// CartItem is one line of the quote request.
type CartItem struct {
	MenuItemID string           `json:"menuItemId"`
	Quantity   int              `json:"quantity"`
	Selections []GroupSelection `json:"selections,omitempty"`
}

// QuoteRequest is the full input to the pricing engine. TipCents is a client
// hint only honored when the tenant allows tips.
type QuoteRequest struct {
	Items      []CartItem `json:"items"`
	TipCents   int64      `json:"tipCents,omitempty"`
	CouponCode string     `json:"couponCode,omitempty"`
}

// QuoteLine is the priced form of one cart item.
type QuoteLine struct {
	MenuItemID     string `json:"menuItemId"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

// Quote is the authoritative server-side price breakdown.
type Quote struct {
	TenantID        string      `json:"tenantId"`
	Currency        string      `json:"currency"`
	Lines           []QuoteLine `json:"lines"`
	SubtotalCents   int64       `json:"subtotalCents"`
	DiscountCents   int64       `json:"discountCents"`
	ServiceFeeCents int64       `json:"serviceFeeCents"`
	TaxCents        int64       `json:"taxCents"`
	TipCents        int64       `json:"tipCents"`
	TotalCents      int64       `json:"totalCents"`
	CouponApplied   bool        `json:"couponApplied"`
}

// Repository supplies the read-only catalog and config data the engine
// prices against. ErrCouponNotFound distinguishes an unknown code from a
// store failure so the engine can report it as a validation problem.
type Repository interface {
	GetMenuItem(ctx context.Context, tenantID, itemID string) (MenuItem, error)
	GetOptionGroup(ctx context.Context, tenantID, groupID string) (OptionGroup, error)
	GetOptionItem(ctx context.Context, tenantID, optionID string) (OptionItem, error)
	GetPricingConfig(ctx context.Context, tenantID string) (PricingConfig, error)
	GetCoupon(ctx context.Context, tenantID, code string) (Coupon, error)
}
