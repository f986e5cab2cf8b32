package registry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jusfiscal/config"
)

func testFetcher(baseURL string) *Fetcher {
	cfg := &config.Config{RegistryBaseURL: baseURL, RegistryTimeoutMS: 2000}
	return NewFetcher(cfg, zap.NewNop())
}

func TestCleanCNPJ(t *testing.T) {
	assert.Equal(t, "11222333000181", CleanCNPJ("11.222.333/0001-81"))
	assert.Equal(t, "11222333000181", CleanCNPJ("11222333000181"))
	assert.Equal(t, "", CleanCNPJ("abc"))
}

func TestLookupStripsFormatting(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(CompanyRecord{Status: "OK", Nome: "Empresa A", CNPJ: "11.222.333/0001-81"})
	}))
	defer srv.Close()

	record, err := testFetcher(srv.URL).Lookup("11.222.333/0001-81")
	require.NoError(t, err)
	assert.Equal(t, "/cnpj/11222333000181", gotPath)
	assert.Equal(t, "Empresa A", record.Nome)
}

func TestLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CompanyRecord{Status: "ERROR", Message: "CNPJ inválido"})
	}))
	defer srv.Close()

	_, err := testFetcher(srv.URL).Lookup("99888777000166")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testFetcher(srv.URL).Lookup("11222333000181")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "429")
}

func TestLookupRejectsEmptyCNPJ(t *testing.T) {
	_, err := testFetcher("http://example.com").Lookup("sem-digitos")
	assert.Error(t, err)
}
