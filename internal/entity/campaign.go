package entity

import (
	"time"

	"github.com/google/uuid"
)

type CampaignStatus string

const (
	CampaignStatusDraft  CampaignStatus = "draft"
	CampaignStatusActive CampaignStatus = "active"
)

const (
	DefaultBaseCost         = 20.00
	DefaultProfit           = 5.00
	DefaultCampaignCurrency = "GBP"
	DefaultCampaignDuration = 14
	DefaultSalesGoal        = 1
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type Campaign struct {
	ID               uuid.UUID         `db:"id" json:"id"`
	UserID           string            `db:"user_id" json:"user_id"`
	Title            string            `db:"title" json:"title"`
	Slug             string            `db:"slug" json:"slug"`
	Description      string            `db:"description" json:"description"`
	CreatorName      string            `db:"creator_name" json:"creator_name"`
	BaseCost         float64           `db:"base_cost" json:"base_cost"`
	Profit           float64           `db:"profit" json:"profit"`
	Currency         string            `db:"currency" json:"currency"`
	CampaignDuration int               `db:"campaign_duration" json:"campaign_duration"`
	SalesGoal        int               `db:"sales_goal" json:"sales_goal"`
	Status           CampaignStatus    `db:"status" json:"status"`
	StartsAt         *time.Time        `db:"starts_at" json:"starts_at"`
	LaunchedAt       *time.Time        `db:"launched_at" json:"launched_at"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
	Colors           []CampaignColor   `json:"campaign_colors,omitempty"`
	Products         []CampaignProduct `json:"campaign_products,omitempty"`
}

type CampaignColor struct {
	CampaignID uuid.UUID `db:"campaign_id" json:"campaign_id"`
	ColorID    string    `db:"color_id" json:"color_id"`
	IsFeatured bool      `db:"is_featured" json:"is_featured"`
}

type CampaignProduct struct {
	CampaignID uuid.UUID `db:"campaign_id" json:"campaign_id"`
	ProductID  string    `db:"product_id" json:"product_id"`
}
