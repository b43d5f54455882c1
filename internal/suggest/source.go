package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/industriassp/storefront/internal/domain"
	"github.com/industriassp/storefront/pkg/httpclient"
)

// Source supplies owner suggestions for a query and document-type filter.
type Source interface {
	Search(ctx context.Context, query, filter string) ([]domain.OwnerRecord, error)
}

// searchResponse is the wire shape of the owner search endpoint.
type searchResponse struct {
	OK          bool                `json:"ok"`
	Suggestions []domain.OwnerRecord `json:"suggestions"`
}

// HTTPSource queries GET {base}/api/clientes/search?q=&type= for suggestions.
type HTTPSource struct {
	baseURL string
	client  *httpclient.Client
}

// NewHTTPSource builds a source against the given base URL.
func NewHTTPSource(baseURL string, client *httpclient.Client) *HTTPSource {
	if client == nil {
		client = httpclient.New(httpclient.DefaultConfig())
	}
	return &HTTPSource{baseURL: baseURL, client: client}
}

func (s *HTTPSource) Search(ctx context.Context, query, filter string) ([]domain.OwnerRecord, error) {
	u := fmt.Sprintf("%s/api/clientes/search?q=%s&type=%s",
		s.baseURL, url.QueryEscape(query), url.QueryEscape(filter))

	resp, err := s.client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("owner search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("owner search: status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("owner search: decode: %w", err)
	}
	if !body.OK {
		return nil, fmt.Errorf("owner search: server reported failure")
	}
	return body.Suggestions, nil
}
