package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/uberswe/domaingen/pkg/domain"
)

const DefaultWhoisEndpoint = "https://whoisapi.whoisxmlapi.com/api/v1"

// WhoisXML asks a WHOIS JSON API whether a name is registered
type WhoisXML struct {
	httpLookup
	apiKey   string
	endpoint string
}

type whoisResponse struct {
	Registered         bool   `json:"registered"`
	DomainAvailability string `json:"domainAvailability"`
	ExpiryDate         string `json:"expiryDate"`
	CreationDate       string `json:"creationDate"`
	Registrar          string `json:"registrar"`
}

// NewWhoisXML returns a lookup authenticated with apiKey
func NewWhoisXML(apiKey string, opts ...HTTPOption) *WhoisXML {
	return &WhoisXML{httpLookup: newHTTPLookup(opts), apiKey: apiKey, endpoint: DefaultWhoisEndpoint}
}

// WithEndpoint points the lookup at another API base URL
func (w *WhoisXML) WithEndpoint(endpoint string) *WhoisXML {
	w.endpoint = endpoint
	return w
}

func (w *WhoisXML) Lookup(ctx context.Context, fqdn string) (domain.Verdict, error) {
	u, err := url.Parse(w.endpoint)
	if err != nil {
		return domain.Verdict{}, domain.NewLookupError(domain.KindProtocol, fqdn, err)
	}
	q := u.Query()
	q.Set("apiKey", w.apiKey)
	q.Set("domainName", fqdn)
	q.Set("outputFormat", "JSON")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Verdict{}, domain.NewLookupError(domain.KindProtocol, fqdn, err)
	}

	resp, err := w.do(req, fqdn)
	if err != nil {
		return domain.Verdict{}, err
	}
	defer resp.Body.Close()

	var body whoisResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Verdict{}, domain.NewLookupError(domain.KindProtocol, fqdn, fmt.Errorf("decode WHOIS response: %w", err))
	}

	status := body.DomainAvailability
	if status == "" {
		status = "unknown"
	}
	return domain.Verdict{
		Available: !body.Registered,
		Status:    status,
		Method:    "WHOIS",
		Raw: map[string]any{
			"registrar":     body.Registrar,
			"creation_date": body.CreationDate,
			"expiry_date":   body.ExpiryDate,
		},
	}, nil
}
