package wordpress

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jusfiscal/models"
)

func TestPublishPost(t *testing.T) {
	var gotUser, gotPass, gotPath string
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 7, "link": "https://blog.example.com/?p=7"})
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop())
	cfg := models.WordPressConfig{SiteURL: srv.URL, Username: "editor", Password: "app-pass"}

	result, err := c.PublishPost(cfg, "Título", "Corpo do artigo", []string{"pis", "cofins"})
	require.NoError(t, err)

	assert.Equal(t, 7, result.PostID)
	assert.Equal(t, "https://blog.example.com/?p=7", result.URL)
	assert.Equal(t, "/wp-json/wp/v2/posts", gotPath)
	assert.Equal(t, "editor", gotUser)
	assert.Equal(t, "app-pass", gotPass)
	assert.Equal(t, "Título", gotPayload["title"])
	assert.Equal(t, "publish", gotPayload["status"])
}

func TestPublishPostRequiresConfig(t *testing.T) {
	c := NewClient(zap.NewNop())
	_, err := c.PublishPost(models.WordPressConfig{SiteURL: "https://x"}, "T", "C", nil)
	assert.Error(t, err)
}

func TestPublishPostSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":"rest_cannot_create"}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop())
	cfg := models.WordPressConfig{SiteURL: srv.URL, Username: "editor", Password: "bad"}

	_, err := c.PublishPost(cfg, "T", "C", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "rest_cannot_create")
}
