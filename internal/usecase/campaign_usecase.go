package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"subpage-service/internal/adapter/postgres"
	"subpage-service/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingRequiredFields = errors.New("Missing required fields: title, creatorName")
	ErrNegativeAmount        = errors.New("baseCost, profit, campaignDuration and salesGoal must not be negative")
	ErrInvalidCampaignID     = errors.New("invalid campaign id")
	ErrCampaignNotFound      = errors.New("campaign not found")
)

type CampaignUsecase struct {
	repo   postgres.CampaignRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewCampaignUsecase(repo postgres.CampaignRepository, logger *logrus.Logger) *CampaignUsecase {
	return &CampaignUsecase{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (uc *CampaignUsecase) SaveDraft(ctx context.Context, user *entity.User, in SaveDraftInput) (*entity.Campaign, error) {
	title := strings.TrimSpace(in.Title)
	creator := strings.TrimSpace(in.CreatorName)
	if title == "" || creator == "" {
		return nil, ErrMissingRequiredFields
	}
	if in.BaseCost < 0 || in.Profit < 0 || in.CampaignDuration < 0 || in.SalesGoal < 0 {
		return nil, ErrNegativeAmount
	}

	now := uc.now().UTC()
	id := uuid.New()

	campaign := &entity.Campaign{
		ID:               id,
		UserID:           user.ID,
		Title:            title,
		Slug:             entity.Slugify(title),
		Description:      in.Description,
		CreatorName:      creator,
		BaseCost:         orDefault(in.BaseCost, entity.DefaultBaseCost),
		Profit:           orDefault(in.Profit, entity.DefaultProfit),
		Currency:         strings.ToUpper(orDefault(strings.TrimSpace(in.Currency), entity.DefaultCampaignCurrency)),
		CampaignDuration: orDefault(in.CampaignDuration, entity.DefaultCampaignDuration),
		SalesGoal:        orDefault(in.SalesGoal, entity.DefaultSalesGoal),
		Status:           entity.CampaignStatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if campaign.Slug == "" {
		campaign.Slug = "campaign-" + id.String()[:8]
	}

	for _, colorID := range dedupe(in.SelectedColors) {
		campaign.Colors = append(campaign.Colors, entity.CampaignColor{
			CampaignID: id,
			ColorID:    colorID,
			IsFeatured: colorID == in.FeaturedColorID,
		})
	}
	for _, productID := range dedupe(in.SelectedProducts) {
		campaign.Products = append(campaign.Products, entity.CampaignProduct{
			CampaignID: id,
			ProductID:  productID,
		})
	}

	if err := uc.repo.CreateCampaignDraft(ctx, campaign); err != nil {
		uc.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to save campaign draft")
		return nil, fmt.Errorf("save draft: %w", err)
	}

	uc.logger.WithFields(logrus.Fields{
		"campaign_id": id,
		"slug":        campaign.Slug,
	}).Info("Campaign draft saved")
	return campaign, nil
}

func (uc *CampaignUsecase) GetCampaign(ctx context.Context, user *entity.User, id string) (*entity.Campaign, error) {
	campaignID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidCampaignID
	}

	campaign, err := uc.repo.GetCampaign(ctx, campaignID, user.ID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		uc.logger.WithError(err).WithField("campaign_id", id).Error("Failed to get campaign")
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// LaunchCampaign activates an owned draft and returns its new state.
func (uc *CampaignUsecase) LaunchCampaign(ctx context.Context, user *entity.User, id string) (*entity.Campaign, error) {
	campaignID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidCampaignID
	}

	if err := uc.repo.LaunchCampaign(ctx, campaignID, user.ID, uc.now().UTC()); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		uc.logger.WithError(err).WithField("campaign_id", id).Error("Failed to launch campaign")
		return nil, fmt.Errorf("launch campaign: %w", err)
	}

	return uc.GetCampaign(ctx, user, id)
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
