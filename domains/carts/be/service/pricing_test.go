package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
)

type stubCatalog struct {
	items   map[string]MenuItem
	groups  map[string]OptionGroup
	options map[string]OptionItem
	coupons map[string]Coupon
	config  *PricingConfig
}

func (s *stubCatalog) GetMenuItem(ctx context.Context, tenantID, itemID string) (MenuItem, error) {
	item, ok := s.items[itemID]
	if !ok {
		return MenuItem{}, ErrMenuItemNotFound
	}
	return item, nil
}

func (s *stubCatalog) GetOptionGroup(ctx context.Context, tenantID, groupID string) (OptionGroup, error) {
	group, ok := s.groups[groupID]
	if !ok {
		return OptionGroup{}, ErrOptionGroupNotFound
	}
	return group, nil
}

func (s *stubCatalog) GetOptionItem(ctx context.Context, tenantID, optionID string) (OptionItem, error) {
	option, ok := s.options[optionID]
	if !ok {
		return OptionItem{}, ErrOptionItemNotFound
	}
	return option, nil
}

func (s *stubCatalog) GetPricingConfig(ctx context.Context, tenantID string) (PricingConfig, error) {
	if s.config == nil {
		return PricingConfig{}, ErrConfigNotFound
	}
	return *s.config, nil
}

func (s *stubCatalog) GetCoupon(ctx context.Context, tenantID, code string) (Coupon, error) {
	coupon, ok := s.coupons[code]
	if !ok {
		return Coupon{}, ErrCouponNotFound
	}
	return coupon, nil
}

func basicCatalog() *stubCatalog {
	return &stubCatalog{
		items: map[string]MenuItem{
			"burger": {ID: "burger", Name: "Burger", PriceCents: 1000, Available: true, OptionGroupIDs: []string{"extras"}},
			"soup":   {ID: "soup", Name: "Soup", PriceCents: 650, Available: true},
			"pie":    {ID: "pie", Name: "Pie", PriceCents: 400, Available: false},
		},
		groups: map[string]OptionGroup{
			"extras": {ID: "extras", Name: "Extras", MinSelect: 0, MaxSelect: 2},
		},
		options: map[string]OptionItem{
			"cheese": {ID: "cheese", GroupID: "extras", Name: "Cheese", PriceDeltaCents: 150, Active: true},
			"bacon":  {ID: "bacon", GroupID: "extras", Name: "Bacon", PriceDeltaCents: 200, Active: false},
			"mint":   {ID: "mint", GroupID: "teas", Name: "Mint", PriceDeltaCents: 50, Active: true},
		},
		coupons: map[string]Coupon{},
		config:  &PricingConfig{Currency: "USD", TaxRate: 0.10},
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := apperror.AsError(err)
	require.True(t, ok, "expected apperror, got %v", err)
	require.Equal(t, code, appErr.Code)
	require.Equal(t, apperror.KindValidation, appErr.Kind)
}

func TestQuoteBasicTaxOnly(t *testing.T) {
	svc := New(basicCatalog())

	q, err := svc.Quote(context.Background(), "acme", QuoteRequest{
		Items: []CartItem{{MenuItemID: "burger", Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2000), q.SubtotalCents)
	require.Equal(t, int64(0), q.DiscountCents)
	require.Equal(t, int64(0), q.ServiceFeeCents)
	require.Equal(t, int64(200), q.TaxCents)
	require.Equal(t, int64(2200), q.TotalCents)
	require.False(t, q.CouponApplied)
	require.Len(t, q.Lines, 1)
	require.Equal(t, int64(1000), q.Lines[0].UnitPriceCents)
}

func TestQuoteOptionDeltas(t *testing.T) {
	svc := New(basicCatalog())

	q, err := svc.Quote(context.Background(), "acme", QuoteRequest{
		Items: []CartItem{{
			MenuItemID: "burger",
			Quantity:   3,
			Selections: []GroupSelection{{GroupID: "extras", OptionIDs: []string{"cheese"}}},
		}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1150), q.Lines[0].UnitPriceCents)
	require.Equal(t, int64(3450), q.SubtotalCents)
}

func TestQuoteServiceFeeAndTax(t *testing.T) {
	catalog := basicCatalog()
	catalog.config = &PricingConfig{
		Currency:             "USD",
		TaxRate:              0.10,
		ServiceFeePercent:    0.05,
		ServiceFeeFixedCents: 50,
	}
	svc := New(catalog)

	q, err := svc.Quote(context.Background(), "acme", QuoteRequest{
		Items: []CartItem{{MenuItemID: "burger", Quantity: 2}},
	})
	require.NoError(t, err)
	// fee = 5% of 2000 + 50 = 150; tax = 10% of (2000 + 150) = 215.
	require.Equal(t, int64(150), q.ServiceFeeCents)
	require.Equal(t, int64(215), q.TaxCents)
	require.Equal(t, int64(2365), q.TotalCents)
}

func TestQuotePercentCouponMinSubtotal(t *testing.T) {
	catalog := basicCatalog()
	catalog.coupons["SAVE10"] = Coupon{
		Code:             "SAVE10",
		Type:             CouponPercent,
		Value:            0.10,
		MinSubtotalCents: 1500,
		IsActive:         true,
	}
	svc := New(catalog)
	ctx := context.Background()

	met, err := svc.Quote(ctx, "acme", QuoteRequest{
		Items:      []CartItem{{MenuItemID: "burger", Quantity: 2}},
		CouponCode: "SAVE10",
	})
	require.NoError(t, err)
	require.Equal(t, int64(200), met.DiscountCents)
	require.True(t, met.CouponApplied)
	// tax = 10% of (2000 - 200) = 180.
	require.Equal(t, int64(180), met.TaxCents)
	require.Equal(t, int64(1980), met.TotalCents)

	// Below the minimum the coupon is ignored, not rejected.
	below, err := svc.Quote(ctx, "acme", QuoteRequest{
		Items:      []CartItem{{MenuItemID: "burger", Quantity: 1}},
		CouponCode: "SAVE10",
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), below.DiscountCents)
	require.False(t, below.CouponApplied)
}

func TestQuoteCouponCodeIsCaseInsensitive(t *testing.T) {
	catalog := basicCatalog()
	catalog.coupons["SAVE10"] = Coupon{Code: "SAVE10", Type: CouponPercent, Value: 0.10, IsActive: true}
	svc := New(catalog)

	// Codes are stored uppercase; lookup folds the client's spelling.
	q, err := svc.Quote(context.Background(), "acme", QuoteRequest{
		Items:      []CartItem{{MenuItemID: "burger", Quantity: 2}},
		CouponCode: " save10 ",
	})
	require.NoError(t, err)
	require.True(t, q.CouponApplied)
	require.Equal(t, int64(200), q.DiscountCents)
}

func TestQuoteFixedCouponClampedToSubtotal(t *testing.T) {
	catalog := basicCatalog()
	catalog.coupons["BIG"] = Coupon{Code: "BIG", Type: CouponFixed, AmountCents: 5000, IsActive: true}
	svc := New(catalog)

	q, err := svc.Quote(context.Background(), "acme", QuoteRequest{
		Items:      []CartItem{{MenuItemID: "soup", Quantity: 1}},
		CouponCode: "BIG",
	})
	require.NoError(t, err)
	require.Equal(t, int64(650), q.DiscountCents)
	require.Equal(t, int64(0), q.TotalCents)
}

func TestQuoteCouponOverServiceBase(t *testing.T) {
	catalog := basicCatalog()
	catalog.config = &PricingConfig{
		Currency:          "USD",
		TaxRate:           0,
		ServiceFeePercent: 0.10,
		DiscountsApplyTo:  DiscountsApplyToSubtotalService,
	}
	catalog.coupons["ALL10"] = Coupon{Code: "ALL10", Type: CouponPercent, Value: 0.10, IsActive: true}
	svc := New(catalog)

	q, err := svc.Quote(context.Background(), "acme", QuoteRequest{
		Items:      []CartItem{{MenuItemID: "burger", Quantity: 2}},
		CouponCode: "ALL10",
	})
	require.NoError(t, err)
	// Base is subtotal plus the provisional fee: 2000 + 200 = 2200; 10% = 220.
	require.Equal(t, int64(220), q.DiscountCents)
	// Fee is then recomputed over the discounted subtotal: 10% of 1780 = 178.
	require.Equal(t, int64(178), q.ServiceFeeCents)
	require.Equal(t, int64(1958), q.TotalCents)
}

func TestQuoteCouponErrors(t *testing.T) {
	catalog := basicCatalog()
	catalog.coupons["OLD"] = Coupon{Code: "OLD", Type: CouponFixed, AmountCents: 100, IsActive: false}
	catalog.coupons["EURO"] = Coupon{Code: "EURO", Type: CouponFixed, AmountCents: 100, IsActive: true, Currency: "EUR"}
	svc := New(catalog)
	ctx := context.Background()
	items := []CartItem{{MenuItemID: "soup", Quantity: 1}}

	_, err := svc.Quote(ctx, "acme", QuoteRequest{Items: items, CouponCode: "NOPE"})
	requireCode(t, err, "COUPON_NOT_FOUND")

	_, err = svc.Quote(ctx, "acme", QuoteRequest{Items: items, CouponCode: "OLD"})
	requireCode(t, err, "COUPON_INACTIVE")

	_, err = svc.Quote(ctx, "acme", QuoteRequest{Items: items, CouponCode: "EURO"})
	requireCode(t, err, "CURRENCY_MISMATCH")
}

func TestQuoteTipOnlyWhenAllowed(t *testing.T) {
	catalog := basicCatalog()
	svc := New(catalog)
	ctx := context.Background()
	req := QuoteRequest{Items: []CartItem{{MenuItemID: "soup", Quantity: 1}}, TipCents: 300}

	q, err := svc.Quote(ctx, "acme", req)
	require.NoError(t, err)
	require.Equal(t, int64(0), q.TipCents)

	catalog.config.AllowTips = true
	q, err = svc.Quote(ctx, "acme", req)
	require.NoError(t, err)
	require.Equal(t, int64(300), q.TipCents)
	require.Equal(t, int64(650+65+300), q.TotalCents)
}

func TestQuoteCatalogValidation(t *testing.T) {
	svc := New(basicCatalog())
	ctx := context.Background()

	cases := []struct {
		name string
		req  QuoteRequest
		code string
	}{
		{"empty cart", QuoteRequest{}, "CART_EMPTY"},
		{"negative tip", QuoteRequest{Items: []CartItem{{MenuItemID: "soup", Quantity: 1}}, TipCents: -1}, "TIP_NEGATIVE"},
		{"zero quantity", QuoteRequest{Items: []CartItem{{MenuItemID: "soup", Quantity: 0}}}, "QUANTITY_INVALID"},
		{"missing id", QuoteRequest{Items: []CartItem{{Quantity: 1}}}, "MENU_ITEM_ID_REQUIRED"},
		{"unknown item", QuoteRequest{Items: []CartItem{{MenuItemID: "ghost", Quantity: 1}}}, "MENU_ITEM_NOT_FOUND"},
		{"unavailable item", QuoteRequest{Items: []CartItem{{MenuItemID: "pie", Quantity: 1}}}, "MENU_ITEM_UNAVAILABLE"},
		{"group not on item", QuoteRequest{Items: []CartItem{{
			MenuItemID: "soup", Quantity: 1,
			Selections: []GroupSelection{{GroupID: "extras", OptionIDs: []string{"cheese"}}},
		}}}, "INVALID_GROUP_FOR_ITEM"},
		{"max violation", QuoteRequest{Items: []CartItem{{
			MenuItemID: "burger", Quantity: 1,
			Selections: []GroupSelection{{GroupID: "extras", OptionIDs: []string{"cheese", "cheese", "cheese"}}},
		}}}, "GROUP_MAX_VIOLATION"},
		{"unknown option", QuoteRequest{Items: []CartItem{{
			MenuItemID: "burger", Quantity: 1,
			Selections: []GroupSelection{{GroupID: "extras", OptionIDs: []string{"ghost"}}},
		}}}, "OPTION_NOT_FOUND"},
		{"inactive option", QuoteRequest{Items: []CartItem{{
			MenuItemID: "burger", Quantity: 1,
			Selections: []GroupSelection{{GroupID: "extras", OptionIDs: []string{"bacon"}}},
		}}}, "OPTION_INACTIVE"},
		{"option from other group", QuoteRequest{Items: []CartItem{{
			MenuItemID: "burger", Quantity: 1,
			Selections: []GroupSelection{{GroupID: "extras", OptionIDs: []string{"mint"}}},
		}}}, "OPTION_WRONG_GROUP"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Quote(ctx, "acme", tc.req)
			requireCode(t, err, tc.code)
		})
	}
}

func TestQuoteGroupMinViolation(t *testing.T) {
	catalog := basicCatalog()
	catalog.groups["extras"] = OptionGroup{ID: "extras", Name: "Extras", MinSelect: 1, MaxSelect: 2}
	svc := New(catalog)

	_, err := svc.Quote(context.Background(), "acme", QuoteRequest{
		Items: []CartItem{{
			MenuItemID: "burger", Quantity: 1,
			Selections: []GroupSelection{{GroupID: "extras", OptionIDs: nil}},
		}},
	})
	requireCode(t, err, "GROUP_MIN_VIOLATION")
}

func TestQuoteMissingConfig(t *testing.T) {
	catalog := basicCatalog()
	catalog.config = nil
	svc := New(catalog)

	_, err := svc.Quote(context.Background(), "acme", QuoteRequest{
		Items: []CartItem{{MenuItemID: "soup", Quantity: 1}},
	})
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
