package suborder

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sndev/marketplace-backend/internal/platform/apperr"
)

type memRepo struct {
	subOrders map[uuid.UUID]*SubOrder
	updates   int
}

func newMemRepo() *memRepo { return &memRepo{subOrders: map[uuid.UUID]*SubOrder{}} }

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*SubOrder, error) {
	s, ok := r.subOrders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *memRepo) Update(_ context.Context, s *SubOrder) error {
	if _, ok := r.subOrders[s.ID]; !ok {
		return ErrNotFound
	}
	r.subOrders[s.ID] = s
	r.updates++
	return nil
}

func (r *memRepo) ListByParent(_ context.Context, parentID uuid.UUID) ([]*SubOrder, error) {
	var out []*SubOrder
	for _, s := range r.subOrders {
		if s.ParentOrderID == parentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memRepo) ListBySeller(_ context.Context, sellerID string, status Status, limit, offset int) ([]*SubOrder, error) {
	matches := r.matching(sellerID, status)
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	if offset >= len(matches) {
		return nil, nil
	}
	matches = matches[offset:]
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *memRepo) CountBySeller(_ context.Context, sellerID string, status Status) (int64, error) {
	return int64(len(r.matching(sellerID, status))), nil
}

func (r *memRepo) matching(sellerID string, status Status) []*SubOrder {
	var out []*SubOrder
	for _, s := range r.subOrders {
		if s.SellerID != sellerID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, s)
	}
	return out
}

func seed(repo *memRepo, sellerID string, status Status, createdAt time.Time) *SubOrder {
	s := &SubOrder{
		ID:            uuid.New(),
		ParentOrderID: uuid.New(),
		SellerID:      sellerID,
		UserID:        "u1",
		SubTotal:      42,
		Status:        status,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	repo.subOrders[s.ID] = s
	return s
}

func TestUpdateStatusAdvancesAndStampsUpdatedAt(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())
	created := time.Now().UTC().Add(-time.Hour)
	s := seed(repo, "seller-a", StatusPending, created)

	updated, err := svc.UpdateStatus(context.Background(), s.ID.String(), UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, updated.Status)
	require.True(t, updated.UpdatedAt.After(created))
	require.Equal(t, 1, repo.updates)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())
	s := seed(repo, "seller-a", StatusPending, time.Now().UTC())

	_, err := svc.UpdateStatus(context.Background(), s.ID.String(), UpdateStatusRequest{Status: "TELEPORTED"})
	require.True(t, apperr.IsInvalidArgument(err))
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())
	s := seed(repo, "seller-a", StatusDelivered, time.Now().UTC())

	_, err := svc.UpdateStatus(context.Background(), s.ID.String(), UpdateStatusRequest{Status: "PENDING"})
	require.True(t, apperr.IsInvalidState(err))
}

func TestUpdateStatusUnknownID(t *testing.T) {
	svc := NewService(newMemRepo(), zap.NewNop())
	_, err := svc.UpdateStatus(context.Background(), uuid.NewString(), UpdateStatusRequest{Status: "CONFIRMED"})
	require.True(t, apperr.IsNotFound(err))
}

func TestListBySellerSortsNewestFirstAndPages(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())
	base := time.Now().UTC()
	oldest := seed(repo, "seller-a", StatusPending, base.Add(-3*time.Hour))
	middle := seed(repo, "seller-a", StatusShipped, base.Add(-2*time.Hour))
	newest := seed(repo, "seller-a", StatusPending, base.Add(-1*time.Hour))
	seed(repo, "seller-b", StatusPending, base)

	page, err := svc.ListBySeller(context.Background(), "seller-a", "", 0, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), page.TotalElements)
	require.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 2)
	require.Equal(t, newest.ID, page.Content[0].ID)
	require.Equal(t, middle.ID, page.Content[1].ID)

	second, err := svc.ListBySeller(context.Background(), "seller-a", "", 1, 2)
	require.NoError(t, err)
	require.Len(t, second.Content, 1)
	require.Equal(t, oldest.ID, second.Content[0].ID)
}

func TestListBySellerFiltersByExactStatus(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())
	base := time.Now().UTC()
	seed(repo, "seller-a", StatusPending, base.Add(-2*time.Hour))
	shipped := seed(repo, "seller-a", StatusShipped, base.Add(-1*time.Hour))

	page, err := svc.ListBySeller(context.Background(), "seller-a", "shipped", 0, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultPageSize, page.Size)
	require.Len(t, page.Content, 1)
	require.Equal(t, shipped.ID, page.Content[0].ID)
}

func TestListBySellerEmptyResultIsAnEmptyPage(t *testing.T) {
	svc := NewService(newMemRepo(), zap.NewNop())
	page, err := svc.ListBySeller(context.Background(), "seller-z", "", 0, 10)
	require.NoError(t, err)
	require.NotNil(t, page.Content)
	require.Empty(t, page.Content)
	require.Zero(t, page.TotalElements)
	require.Zero(t, page.TotalPages)
}
