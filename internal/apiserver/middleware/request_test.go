package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amoylab/ifood-dashboard/internal/common/cnst"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(cnst.CtxKeyRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	generated := w.Header().Get(cnst.HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(cnst.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(cnst.HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(cnst.HeaderRequestID, strings.Repeat("x", 500))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(cnst.HeaderRequestID), 36)
}

func TestLanguage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Language())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(cnst.XLang)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "pt", w.Body.String())
}

func TestLoggerAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(RequestID(), Logger(logger), Recovery(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())

	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	completed := logs.FilterMessage("request completed").All()
	if assert.Len(t, completed, 2) {
		assert.Equal(t, "/ok", completed[0].ContextMap()["path"])
		assert.Equal(t, int64(http.StatusInternalServerError), completed[1].ContextMap()["status"])
	}
}
