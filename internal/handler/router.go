package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// functionsPrefix keeps the paths the hosted-functions clients already call.
const functionsPrefix = "/functions/v1"

type Handlers struct {
	Conversion *ConversionHandler
	Rates      *RateHandler
	Campaigns  *CampaignHandler
}

func NewRouter(h Handlers, allowHeaders []string, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(CORS(allowHeaders)...)
	r.NoMethod(MethodNotAllowed)

	for _, prefix := range []string{"", functionsPrefix} {
		g := r.Group(prefix)

		g.POST("/convert-currency", h.Conversion.Convert)
		g.OPTIONS("/convert-currency", Preflight)

		g.POST("/save-campaign-draft", h.Campaigns.RequireUser, h.Campaigns.SaveDraft)
		g.OPTIONS("/save-campaign-draft", Preflight)
	}

	r.GET("/currency/rates", h.Rates.ListRates)
	r.POST("/currency/rates/refresh", h.Rates.RefreshRates)

	campaigns := r.Group("/campaigns")
	campaigns.OPTIONS("/:id", Preflight)
	campaigns.OPTIONS("/:id/launch", Preflight)
	campaigns.GET("/:id", h.Campaigns.RequireUser, h.Campaigns.GetCampaign)
	campaigns.POST("/:id/launch", h.Campaigns.RequireUser, h.Campaigns.LaunchCampaign)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}
