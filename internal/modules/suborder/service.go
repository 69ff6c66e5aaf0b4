package suborder

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sndev/marketplace-backend/internal/platform/apperr"
	"go.uber.org/zap"
)

// DefaultPageSize bounds seller listings when the caller does not ask
// for a specific size.
const DefaultPageSize = 20

// Service defines the sub-order lifecycle logic.
type Service interface {
	// GetByID retrieves a single sub-order.
	GetByID(ctx context.Context, id string) (*SubOrder, error)

	// UpdateStatus advances a sub-order to a new fulfilment status.
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*SubOrder, error)

	// ListBySeller returns a page of a seller's sub-orders, newest first,
	// optionally filtered by exact status.
	ListBySeller(ctx context.Context, sellerID, status string, page, size int) (*Page, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new sub-order service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) GetByID(ctx context.Context, id string) (*SubOrder, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "invalid sub-order id: %s", id)
	}
	sub, err := s.repo.GetByID(ctx, uid)
	if err == ErrNotFound {
		return nil, apperr.Newf(apperr.KindNotFound, "sub-order not found with id: %s", id)
	}
	return sub, err
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*SubOrder, error) {
	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := Status(strings.ToUpper(req.Status))
	if !KnownStatus(next) {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "unknown sub-order status: %s", req.Status)
	}
	if !CanTransition(sub.Status, next) {
		return nil, apperr.Newf(apperr.KindInvalidState,
			"cannot transition sub-order from %s to %s", sub.Status, next)
	}

	sub.Status = next
	sub.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, sub); err != nil {
		if err == ErrNotFound {
			return nil, apperr.Newf(apperr.KindNotFound, "sub-order not found with id: %s", id)
		}
		return nil, err
	}

	s.logger.Info("sub-order status updated",
		zap.String("sub_order_id", sub.ID.String()),
		zap.String("seller_id", sub.SellerID),
		zap.String("status", string(next)))
	return sub, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID, status string, page, size int) (*Page, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	filter := Status(strings.ToUpper(status))
	if status == "" {
		filter = ""
	}

	subOrders, err := s.repo.ListBySeller(ctx, sellerID, filter, size, page*size)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountBySeller(ctx, sellerID, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}
	if subOrders == nil {
		subOrders = []*SubOrder{}
	}
	return &Page{
		Content:       subOrders,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}
