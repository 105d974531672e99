package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/orderdesk/orderdesk-saas/domains/carts/be/service"
	"github.com/orderdesk/orderdesk-saas/platform/go/docstore"
)

// DocstoreRepository reads the catalog and pricing config from the tenant's
// partition. All reads; the quote engine never writes.
type DocstoreRepository struct {
	store docstore.Store
}

// NewDocstoreRepository constructs a DocstoreRepository.
func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	if store == nil {
		panic("carts repo: store is required")
	}
	return &DocstoreRepository{store: store}
}

func (r *DocstoreRepository) get(ctx context.Context, path string, notFound error, out any) error {
	data, err := r.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return docstore.Decode(data, out)
}

func (r *DocstoreRepository) GetMenuItem(ctx context.Context, tenantID, itemID string) (service.MenuItem, error) {
	var item service.MenuItem
	path := fmt.Sprintf("tenants/%s/menuItems/%s", tenantID, itemID)
	err := r.get(ctx, path, service.ErrMenuItemNotFound, &item)
	return item, err
}

func (r *DocstoreRepository) GetOptionGroup(ctx context.Context, tenantID, groupID string) (service.OptionGroup, error) {
	var group service.OptionGroup
	path := fmt.Sprintf("tenants/%s/optionGroups/%s", tenantID, groupID)
	err := r.get(ctx, path, service.ErrOptionGroupNotFound, &group)
	return group, err
}

func (r *DocstoreRepository) GetOptionItem(ctx context.Context, tenantID, optionID string) (service.OptionItem, error) {
	var option service.OptionItem
	path := fmt.Sprintf("tenants/%s/optionItems/%s", tenantID, optionID)
	err := r.get(ctx, path, service.ErrOptionItemNotFound, &option)
	return option, err
}

// GetPricingConfig loads the singleton config document and schema-validates
// it before decoding, rejecting admin-authored documents with a bad shape.
func (r *DocstoreRepository) GetPricingConfig(ctx context.Context, tenantID string) (service.PricingConfig, error) {
	path := fmt.Sprintf("tenants/%s/config/pricing", tenantID)
	data, err := r.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		return service.PricingConfig{}, service.ErrConfigNotFound
	}
	if err != nil {
		return service.PricingConfig{}, fmt.Errorf("get %s: %w", path, err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return service.PricingConfig{}, fmt.Errorf("encode pricing config %s: %w", tenantID, err)
	}
	if err := service.ValidatePricingConfigDocument(raw); err != nil {
		return service.PricingConfig{}, fmt.Errorf("tenant %s: %w", tenantID, err)
	}

	var cfg service.PricingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return service.PricingConfig{}, fmt.Errorf("decode pricing config %s: %w", tenantID, err)
	}
	return cfg, nil
}

func (r *DocstoreRepository) GetCoupon(ctx context.Context, tenantID, code string) (service.Coupon, error) {
	var coupon service.Coupon
	path := fmt.Sprintf("tenants/%s/coupons/%s", tenantID, code)
	err := r.get(ctx, path, service.ErrCouponNotFound, &coupon)
	return coupon, err
}

var _ service.Repository = (*DocstoreRepository)(nil)
