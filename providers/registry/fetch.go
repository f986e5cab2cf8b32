package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"jusfiscal/config"
)

// ErrNotFound is returned when the registry has no record for a CNPJ.
var ErrNotFound = fmt.Errorf("company not found in registry")

// Fetcher looks up company records in the public CNPJ registry.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewFetcher creates a registry fetcher with the configured timeout.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config: cfg,
		Logger: logger,
		client: &http.Client{Timeout: time.Duration(cfg.RegistryTimeoutMS) * time.Millisecond},
	}
}

// Lookup fetches the registry record for a CNPJ. Formatting characters
// in the CNPJ are stripped before the request.
func (f *Fetcher) Lookup(cnpj string) (*CompanyRecord, error) {
	clean := CleanCNPJ(cnpj)
	if clean == "" {
		return nil, fmt.Errorf("cnpj %q contains no digits", cnpj)
	}

	url := fmt.Sprintf("%s/cnpj/%s", strings.TrimRight(f.Config.RegistryBaseURL, "/"), clean)
	f.Logger.Debug("Querying CNPJ registry", zap.String("cnpj", clean), zap.String("url", url))

	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var record CompanyRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("registry reply could not be parsed: %w", err)
	}
	if record.Status != "OK" {
		return nil, ErrNotFound
	}
	return &record, nil
}

// CleanCNPJ strips everything but digits from a CNPJ string.
func CleanCNPJ(cnpj string) string {
	var b strings.Builder
	for _, r := range cnpj {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
