package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid item ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateItemRequest) (*Item, error) {
	if err := actor.Require(shared.PermInventoryEdit); err != nil {
		return nil, err
	}

	item := Item{
		SKU:       req.SKU,
		Name:      req.Name,
		Unit:      req.Unit,
		UnitCost:  req.UnitCost,
		CreatedBy: actor.UserID,
	}
	id, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.logger.Info("inventory item created", "item_id", id, "sku", req.SKU, "user_id", actor.UserID)
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateItemRequest) (*Item, error) {
	if err := actor.Require(shared.PermInventoryEdit); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
		}
		updates["name"] = *req.Name
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.UnitCost != nil {
		updates["unit_cost"] = *req.UnitCost
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update item: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// Adjust applies a stock movement. Receipts with a unit cost re-average the
// item's carrying cost; issues that would take stock below zero are rejected.
func (s *Service) Adjust(ctx context.Context, actor shared.Actor, itemID int64, req AdjustStockRequest) (*Item, error) {
	if err := actor.Require(shared.PermInventoryEdit); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown movement type %q", shared.ErrValidation, req.Type)
	}
	if req.Qty <= 0 {
		return nil, fmt.Errorf("%w: movement quantity must be positive", shared.ErrValidation)
	}

	item, err := s.repo.Adjust(ctx, Movement{
		ItemID:     itemID,
		Type:       req.Type,
		Qty:        req.Qty,
		UnitCost:   valueOr(req.UnitCost, 0),
		Reference:  req.Reference,
		RecordedBy: actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock adjusted", "item_id", itemID, "type", req.Type, "qty", req.Qty,
		"on_hand", item.QtyOnHand, "user_id", actor.UserID)
	return item, nil
}

func (s *Service) Movements(ctx context.Context, itemID int64) ([]Movement, error) {
	if _, err := s.repo.Get(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.Movements(ctx, itemID)
}

func (s *Service) Archive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermInventoryEdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, true)
}

func (s *Service) Unarchive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermInventoryEdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, false)
}

// applyMovement mutates the item for one movement and reports the resulting
// quantity. Shared between the transactional repository and in-memory fakes
// so both enforce the same floor and cost re-averaging.
func applyMovement(item *Item, mv Movement) error {
	switch mv.Type {
	case MovementReceive:
		if mv.UnitCost > 0 {
			totalCost := item.UnitCost*item.QtyOnHand + mv.UnitCost*mv.Qty
			item.UnitCost = shared.Round2(totalCost / (item.QtyOnHand + mv.Qty))
		}
		item.QtyOnHand += mv.Qty
	case MovementIssue:
		if item.QtyOnHand-mv.Qty < 0 {
			return fmt.Errorf("%w: issuing %.2f would take stock below zero (on hand %.2f)",
				shared.ErrConflict, mv.Qty, item.QtyOnHand)
		}
		item.QtyOnHand -= mv.Qty
	default:
		return fmt.Errorf("%w: unknown movement type %q", shared.ErrValidation, mv.Type)
	}
	return nil
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
