package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/orderdesk/orderdesk-saas/domains/staff/be/service"
	"github.com/orderdesk/orderdesk-saas/platform/go/docstore"
)

// DocstoreRepository persists member records under each tenant's partition.
type DocstoreRepository struct {
	store docstore.Store
}

// NewDocstoreRepository constructs a DocstoreRepository.
func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	if store == nil {
		panic("staff repo: store is required")
	}
	return &DocstoreRepository{store: store}
}

func memberPath(tenantID, uid string) string {
	return fmt.Sprintf("tenants/%s/members/%s", tenantID, uid)
}

func membersCollection(tenantID string) string {
	return fmt.Sprintf("tenants/%s/members", tenantID)
}

func (r *DocstoreRepository) GetMember(ctx context.Context, tenantID, uid string) (service.Member, error) {
	data, err := r.store.Get(ctx, memberPath(tenantID, uid))
	if errors.Is(err, docstore.ErrNotFound) {
		return service.Member{}, service.ErrMemberNotFound
	}
	if err != nil {
		return service.Member{}, fmt.Errorf("get member %s/%s: %w", tenantID, uid, err)
	}
	var m service.Member
	if err := docstore.Decode(data, &m); err != nil {
		return service.Member{}, err
	}
	return m, nil
}

func (r *DocstoreRepository) PutMember(ctx context.Context, tenantID string, m service.Member) error {
	data, err := docstore.Encode(m)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, memberPath(tenantID, m.UID), data)
}

func (r *DocstoreRepository) DeleteMember(ctx context.Context, tenantID, uid string) error {
	return r.store.Delete(ctx, memberPath(tenantID, uid))
}

func (r *DocstoreRepository) ListMembers(ctx context.Context, tenantID string) ([]service.Member, error) {
	docs, err := r.store.Query(ctx, membersCollection(tenantID), docstore.Query{OrderBy: "uid"})
	if err != nil {
		return nil, fmt.Errorf("list members %s: %w", tenantID, err)
	}
	members := make([]service.Member, 0, len(docs))
	for _, doc := range docs {
		var m service.Member
		if err := docstore.Decode(doc.Data, &m); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

var _ service.Repository = (*DocstoreRepository)(nil)
