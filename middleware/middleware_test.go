package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationEcho() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PaginationDefaults())
	r.GET("/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"page":  c.Query("page"),
			"limit": c.Query("limit"),
		})
	})
	return r
}

func TestPaginationDefaults(t *testing.T) {
	r := paginationEcho()

	get := func(url string) string {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, url, nil)
		r.ServeHTTP(w, req)
		return w.Body.String()
	}

	t.Run("missing params get defaults", func(t *testing.T) {
		assert.JSONEq(t, `{"page":"1","limit":"10"}`, get("/items"))
	})

	t.Run("explicit params are preserved", func(t *testing.T) {
		assert.JSONEq(t, `{"page":"3","limit":"25"}`, get("/items?page=3&limit=25"))
	})

	t.Run("oversized limit is clamped", func(t *testing.T) {
		assert.JSONEq(t, `{"page":"1","limit":"50"}`, get("/items?limit=500"))
	})
}
