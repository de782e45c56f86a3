package usecase

// SaveDraftInput carries the wizard fields; zero values fall back to campaign defaults.
type SaveDraftInput struct {
	Title            string
	Description      string
	CreatorName      string
	BaseCost         float64
	Profit           float64
	Currency         string
	CampaignDuration int
	SalesGoal        int
	SelectedColors   []string
	FeaturedColorID  string
	SelectedProducts []string
}
