package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
			userID, err := GetUserID(c)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"userID": userID})
		})
		return r
	}

	t.Run("Success - identity header accepted", func(t *testing.T) {
		router := newRouter()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-User-ID", "64f0c2a9e13b4a6d8f9e0b11")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "64f0c2a9e13b4a6d8f9e0b11")
	})

	t.Run("Failure - missing identity header - 401", func(t *testing.T) {
		router := newRouter()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestAdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.GET("/admin", AuthMiddleware(), AdminOnly(), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		return r
	}

	t.Run("Success - admin role passes", func(t *testing.T) {
		router := newRouter()
		req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("X-User-ID", "64f0c2a9e13b4a6d8f9e0b11")
		req.Header.Set("X-User-Role", "admin")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Failure - customer role rejected - 403", func(t *testing.T) {
		router := newRouter()
		req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("X-User-ID", "64f0c2a9e13b4a6d8f9e0b11")
		req.Header.Set("X-User-Role", "customer")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}
