package handler

// ConvertRequest uses a pointer so a missing amount is told apart from zero.
type ConvertRequest struct {
	Amount       *float64 `json:"amount"`
	FromCurrency string   `json:"fromCurrency"`
	ToCurrency   string   `json:"toCurrency"`
}

type SaveDraftRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	CreatorName      string   `json:"creatorName"`
	BaseCost         float64  `json:"baseCost"`
	Profit           float64  `json:"profit"`
	Currency         string   `json:"currency"`
	CampaignDuration int      `json:"campaignDuration"`
	SalesGoal        int      `json:"salesGoal"`
	SelectedColors   []string `json:"selectedColors"`
	FeaturedColorID  string   `json:"featuredColorId"`
	SelectedProducts []string `json:"selectedProducts"`
}
