package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subpage-service/internal/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

var campaignColumns = []string{
	"id", "user_id", "title", "slug", "description", "creator_name",
	"base_cost", "profit", "currency", "campaign_duration", "sales_goal",
	"status", "starts_at", "launched_at", "created_at", "updated_at",
}

type CampaignRepo struct {
	pool   Pool
	logger *logrus.Logger
}

func NewCampaignRepo(pool Pool, logger *logrus.Logger) *CampaignRepo {
	return &CampaignRepo{
		pool:   pool,
		logger: logger,
	}
}

// CreateCampaignDraft inserts the campaign with its colors and products in a single transaction.
func (r *CampaignRepo) CreateCampaignDraft(ctx context.Context, c *entity.Campaign) error {
	log := r.logger.WithFields(logrus.Fields{"campaign_id": c.ID, "user_id": c.UserID})
	log.Debug("Start creating campaign draft")

	batch := &pgx.Batch{}

	query, args, err := psql.Insert("campaigns").
		Columns(campaignColumns...).
		Values(
			c.ID, c.UserID, c.Title, c.Slug, c.Description, c.CreatorName,
			c.BaseCost, c.Profit, c.Currency, c.CampaignDuration, c.SalesGoal,
			string(c.Status), c.StartsAt, c.LaunchedAt, c.CreatedAt, c.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build campaign insert: %w", err)
	}
	batch.Queue(query, args...)

	for _, color := range c.Colors {
		query, args, err := psql.Insert("campaign_colors").
			Columns("campaign_id", "color_id", "is_featured").
			Values(c.ID, color.ColorID, color.IsFeatured).
			ToSql()
		if err != nil {
			return fmt.Errorf("build color insert %s: %w", color.ColorID, err)
		}
		batch.Queue(query, args...)
	}

	for _, product := range c.Products {
		query, args, err := psql.Insert("campaign_products").
			Columns("campaign_id", "product_id").
			Values(c.ID, product.ProductID).
			ToSql()
		if err != nil {
			return fmt.Errorf("build product insert %s: %w", product.ProductID, err)
		}
		batch.Queue(query, args...)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to begin transaction")
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := sendBatch(ctx, tx, batch, r.logger); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.WithError(rbErr).Error("Failed to rollback campaign draft")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		log.WithError(err).Error("Failed to commit campaign draft")
		return fmt.Errorf("commit tx: %w", err)
	}

	log.WithFields(logrus.Fields{
		"colors":   len(c.Colors),
		"products": len(c.Products),
	}).Info("Campaign draft created")
	return nil
}

func (r *CampaignRepo) GetCampaign(ctx context.Context, id uuid.UUID, userID string) (*entity.Campaign, error) {
	query, args, err := psql.Select(campaignColumns...).
		From("campaigns").
		Where("id = ? AND user_id = ?", id, userID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build campaign select: %w", err)
	}

	var (
		c      entity.Campaign
		status string
	)
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.UserID, &c.Title, &c.Slug, &c.Description, &c.CreatorName,
		&c.BaseCost, &c.Profit, &c.Currency, &c.CampaignDuration, &c.SalesGoal,
		&status, &c.StartsAt, &c.LaunchedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select campaign: %w", err)
	}
	c.Status = entity.CampaignStatus(status)

	if c.Colors, err = r.listColors(ctx, c.ID); err != nil {
		return nil, err
	}
	if c.Products, err = r.listProducts(ctx, c.ID); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *CampaignRepo) listColors(ctx context.Context, campaignID uuid.UUID) ([]entity.CampaignColor, error) {
	query, args, err := psql.Select("color_id", "is_featured").
		From("campaign_colors").
		Where("campaign_id = ?", campaignID).
		OrderBy("color_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build colors select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query colors: %w", err)
	}
	defer rows.Close()

	var colors []entity.CampaignColor
	for rows.Next() {
		color := entity.CampaignColor{CampaignID: campaignID}
		if err := rows.Scan(&color.ColorID, &color.IsFeatured); err != nil {
			return nil, fmt.Errorf("scan color: %w", err)
		}
		colors = append(colors, color)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate colors: %w", err)
	}
	return colors, nil
}

func (r *CampaignRepo) listProducts(ctx context.Context, campaignID uuid.UUID) ([]entity.CampaignProduct, error) {
	query, args, err := psql.Select("product_id").
		From("campaign_products").
		Where("campaign_id = ?", campaignID).
		OrderBy("product_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build products select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []entity.CampaignProduct
	for rows.Next() {
		product := entity.CampaignProduct{CampaignID: campaignID}
		if err := rows.Scan(&product.ProductID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// LaunchCampaign moves an owned draft to active. A campaign that is missing, foreign or already live yields ErrNotFound.
func (r *CampaignRepo) LaunchCampaign(ctx context.Context, id uuid.UUID, userID string, at time.Time) error {
	query, args, err := psql.Update("campaigns").
		Set("status", string(entity.CampaignStatusActive)).
		Set("starts_at", at).
		Set("launched_at", at).
		Set("updated_at", at).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, string(entity.CampaignStatusDraft)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build launch update: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).WithField("campaign_id", id).Error("Failed to launch campaign")
		return fmt.Errorf("launch campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.logger.WithField("campaign_id", id).Info("Campaign launched")
	return nil
}
