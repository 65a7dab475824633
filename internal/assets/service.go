package assets

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	salesshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListAssets(ctx context.Context, filters ListFilters) ([]Asset, int, error) {
	filters.Normalize()
	return s.repo.ListAssets(ctx, filters)
}

func (s *Service) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid asset ID", shared.ErrValidation)
	}
	return s.repo.GetAsset(ctx, id)
}

func (s *Service) CreateAsset(ctx context.Context, actor shared.Actor, req CreateAssetRequest) (*Asset, error) {
	if err := actor.Require(shared.PermAssetsEdit); err != nil {
		return nil, err
	}

	asset := Asset{
		Name:      req.Name,
		Category:  req.Category,
		DailyRate: req.DailyRate,
		CreatedBy: actor.UserID,
	}
	id, err := s.repo.CreateAsset(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	s.logger.Info("asset created", "asset_id", id, "user_id", actor.UserID)
	return s.repo.GetAsset(ctx, id)
}

func (s *Service) UpdateAsset(ctx context.Context, actor shared.Actor, id int64, req UpdateAssetRequest) (*Asset, error) {
	if err := actor.Require(shared.PermAssetsEdit); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetAsset(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
		}
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.DailyRate != nil {
		updates["daily_rate"] = *req.DailyRate
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateAsset(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update asset: %w", err)
		}
	}
	return s.repo.GetAsset(ctx, id)
}

func (s *Service) ArchiveAsset(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermAssetsEdit); err != nil {
		return err
	}
	if _, err := s.repo.GetAsset(ctx, id); err != nil {
		return err
	}
	active, err := s.repo.HasActiveAgreement(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return fmt.Errorf("%w: asset is out on an active agreement", shared.ErrConflict)
	}
	return s.repo.SetAssetArchived(ctx, id, true)
}

func (s *Service) UnarchiveAsset(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermAssetsEdit); err != nil {
		return err
	}
	if _, err := s.repo.GetAsset(ctx, id); err != nil {
		return err
	}
	return s.repo.SetAssetArchived(ctx, id, false)
}

func (s *Service) ListAgreements(ctx context.Context, filters AgreementFilters) ([]Agreement, int, error) {
	filters.Normalize()
	return s.repo.ListAgreements(ctx, filters)
}

func (s *Service) GetAgreement(ctx context.Context, id int64) (*Agreement, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid agreement ID", shared.ErrValidation)
	}
	return s.repo.GetAgreement(ctx, id)
}

// CreateAgreement rents an asset out. The daily rate is copied onto the
// agreement so later rate changes never reprice a running rental. An asset
// can only be out under one active agreement at a time.
func (s *Service) CreateAgreement(ctx context.Context, actor shared.Actor, req CreateAgreementRequest) (*Agreement, error) {
	if err := actor.Require(shared.PermAssetsEdit); err != nil {
		return nil, err
	}
	if !req.DueDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: due date must be after start date", shared.ErrValidation)
	}
	asset, err := s.repo.GetAsset(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}
	if asset.IsArchived {
		return nil, fmt.Errorf("%w: asset is archived", shared.ErrInvalidState)
	}

	agreement := Agreement{
		AssetID:    req.AssetID,
		CustomerID: req.CustomerID,
		Status:     AgreementStatusActive,
		DailyRate:  asset.DailyRate,
		TaxRate:    req.TaxRate,
		StartDate:  req.StartDate,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
		CreatedBy:  actor.UserID,
	}
	id, err := s.repo.CreateAgreement(ctx, agreement)
	if err != nil {
		return nil, err
	}
	s.logger.Info("rental agreement created", "agreement_id", id, "asset_id", req.AssetID,
		"customer_id", req.CustomerID, "user_id", actor.UserID)
	return s.repo.GetAgreement(ctx, id)
}

// Return closes an active agreement and settles the rental charge: whole
// days out (partial days count as full) times the agreed daily rate, run
// through the shared line arithmetic for the tax portion.
func (s *Service) Return(ctx context.Context, actor shared.Actor, id int64, req ReturnAssetRequest) (*Agreement, error) {
	if err := actor.Require(shared.PermAssetsEdit); err != nil {
		return nil, err
	}
	agreement, err := s.repo.GetAgreement(ctx, id)
	if err != nil {
		return nil, err
	}
	if agreement.Status != AgreementStatusActive {
		return nil, fmt.Errorf("%w: agreement is %s, only active rentals can be returned",
			shared.ErrInvalidState, agreement.Status)
	}
	if req.ReturnedAt.Before(agreement.StartDate) {
		return nil, fmt.Errorf("%w: return date precedes rental start", shared.ErrValidation)
	}

	days := rentalDays(agreement.StartDate, req.ReturnedAt)
	totals, err := salesshared.ComputeDocumentTotals([]salesshared.LineInput{{
		Description: fmt.Sprintf("Rental of %d day(s)", days),
		Quantity:    float64(days),
		UnitPrice:   agreement.DailyRate,
		TaxRate:     agreement.TaxRate,
	}}, 0)
	if err != nil {
		return nil, err
	}
	charge := shared.Round2(totals.TotalAmount)

	if err := s.repo.CloseAgreement(ctx, id, req.ReturnedAt, days, charge); err != nil {
		return nil, err
	}
	s.logger.Info("asset returned", "agreement_id", id, "days", days, "charge", charge, "user_id", actor.UserID)
	return s.repo.GetAgreement(ctx, id)
}

// rentalDays counts billable days between start and return. A same-day
// return bills one day; any started day bills in full.
func rentalDays(start, returned time.Time) int {
	hours := returned.Sub(start).Hours()
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		days = 1
	}
	return days
}
