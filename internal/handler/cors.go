package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS opens the API to any origin. Headers are also set on requests that carry
// no Origin, which gin-contrib/cors leaves untouched.
func CORS(allowHeaders []string) []gin.HandlerFunc {
	headerList := strings.Join(allowHeaders, ", ")

	static := func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", headerList)
		c.Next()
	}

	return []gin.HandlerFunc{
		static,
		cors.New(cors.Config{
			AllowAllOrigins:           true,
			AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:              allowHeaders,
			OptionsResponseStatusCode: http.StatusOK,
		}),
	}
}
