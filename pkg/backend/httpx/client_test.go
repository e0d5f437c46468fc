package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"auth":  c.GetHeader("Authorization"),
			"query": c.Query("q"),
		})
	})
	r.POST("/items", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"name": body["name"]})
	})
	r.DELETE("/items/:id", func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetWithTokenAndQuery(t *testing.T) {
	srv := newServer(t)
	c, err := New(Options{BaseURL: srv.URL + "/", Token: "abc", TokenScheme: "bearer"})
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, c.Get(context.Background(), "/items", url.Values{"q": {"x y"}}, &out))
	assert.Equal(t, "bearer abc", out["auth"])
	assert.Equal(t, "x y", out["query"])
}

func TestClient_PostAndDelete(t *testing.T) {
	srv := newServer(t)
	c, err := New(Options{BaseURL: srv.URL, RateLimit: 100, Burst: 5})
	require.NoError(t, err)
	ctx := context.Background()

	var out map[string]string
	require.NoError(t, c.Post(ctx, "/items", nil, map[string]string{"name": "job"}, &out))
	assert.Equal(t, "job", out["name"])

	require.NoError(t, c.Delete(ctx, "/items/1", nil))

	err = c.Delete(ctx, "/items/missing", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.MethodDelete, se.Method)
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	srv := newServer(t)
	c, err := New(Options{BaseURL: srv.URL, RateLimit: 0.001, Burst: 1})
	require.NoError(t, err)

	// 第一个请求消耗令牌
	require.NoError(t, c.Get(context.Background(), "/items", nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, c.Get(ctx, "/items", nil, nil))
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: ""})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "not a url"})
	assert.Error(t, err)
}
