package linkedin

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
	var gotAuth, gotProto string
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotProto = r.Header.Get("X-Restli-Protocol-Version")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:6900"})
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop())
	c.BaseURL = srv.URL

	cfg := models.LinkedInConfig{AccessToken: "tok", PersonID: "abc123"}
	result, err := c.PublishPost(cfg, "Texto do post")
	require.NoError(t, err)

	assert.Equal(t, "urn:li:share:6900", result.PostID)
	assert.Equal(t, "https://www.linkedin.com/feed/update/urn:li:share:6900/", result.URL)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "2.0.0", gotProto)
	assert.Equal(t, "urn:li:person:abc123", gotPayload["author"])
	assert.Equal(t, "PUBLISHED", gotPayload["lifecycleState"])
}

func TestPublishPostRequiresConfig(t *testing.T) {
	c := NewClient(zap.NewNop())
	_, err := c.PublishPost(models.LinkedInConfig{AccessToken: "tok"}, "Texto")
	assert.Error(t, err)
}

func TestPublishPostSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop())
	c.BaseURL = srv.URL

	_, err := c.PublishPost(models.LinkedInConfig{AccessToken: "tok", PersonID: "abc"}, "Texto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "token expired")
}
