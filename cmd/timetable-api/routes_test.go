package main

import (
	"encoding/json"
	"path"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

var routeParam = regexp.MustCompile(`:([A-Za-z]+)`)

func TestRoutesMatchAPIDocs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	metrics := service.NewMetricsService()
	router := newRouter(cfg, zap.NewNop(), metrics, service.NewTokenVerifier(service.TokenVerifierConfig{Secret: "test-secret"}), routeHandlers{
		registry:  handler.NewRegistryHandler(nil),
		timetable: handler.NewTimetableHandler(nil, nil),
		batches:   handler.NewBatchHandler(nil),
		school:    handler.NewSchoolHandler(nil),
		health:    handler.NewHealthHandler(metrics, nil),
	})

	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	var doc struct {
		BasePath string                                `json:"basePath"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	documented := make(map[string]struct{})
	for p, ops := range doc.Paths {
		for method := range ops {
			documented[strings.ToUpper(method)+" "+path.Join(doc.BasePath, p)] = struct{}{}
		}
	}

	routes := router.Routes()
	require.NotEmpty(t, routes)
	for _, route := range routes {
		key := route.Method + " " + routeParam.ReplaceAllString(route.Path, "{$1}")
		assert.Contains(t, documented, key)
	}
	assert.Len(t, documented, len(routes))
}
