package router

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-extractor/internal/api/handler"
	"resume-extractor/internal/constants"
)

// Options 路由选项
type Options struct {
	// APIKeys 非空时 /api/v1 需要 X-API-Key
	APIKeys []string
}

// RegisterRoutes 注册中间件与 API 路由
func RegisterRoutes(h *server.Hertz, extractionHandler *handler.ExtractionHandler, opts Options) {
	h.Use(RequestID(), AccessLog())

	h.GET("/", extractionHandler.Root)
	h.GET("/health", extractionHandler.Health)
	h.POST("/extract", extractionHandler.Extract)

	api := h.Group("/api/v1")
	if len(opts.APIKeys) > 0 {
		api.Use(apiKeyAuth(opts.APIKeys))
	}

	api.GET("/health", extractionHandler.Health)
	api.POST("/extract", extractionHandler.Extract)
	api.POST("/extract/text", extractionHandler.ExtractText)
	api.POST("/extract/async", extractionHandler.SubmitAsync)
	api.GET("/extractions", extractionHandler.ListSubmissions)
	api.GET("/extractions/:uuid", extractionHandler.GetSubmission)
}

var errInvalidAPIKey = errors.New("invalid API key")

func apiKeyAuth(keys []string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+constants.HeaderAPIKey, ""),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, errInvalidAPIKey
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"detail": "Invalid or missing API key"})
		}),
	)
}
