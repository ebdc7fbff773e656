package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/uberswe/domaingen/pkg/domain"
)

const (
	DefaultDoHEndpoint = "https://dns.google/resolve"

	// rcodeNXDomain is the DNS response code for a name that does not exist
	rcodeNXDomain = 3
)

// DoH treats a name as available when a DNS-over-HTTPS JSON resolver answers
// NXDOMAIN. Registered names without records are reported as taken only when
// the resolver finds them, so the verdict is a hint, not a guarantee.
type DoH struct {
	httpLookup
	endpoint string
}

type dohResponse struct {
	Status int  `json:"Status"`
	TC     bool `json:"TC"`
	Answer []struct {
		Name string `json:"name"`
		Type int    `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

// NewDoH returns a lookup against endpoint, dns.google when empty
func NewDoH(endpoint string, opts ...HTTPOption) *DoH {
	if endpoint == "" {
		endpoint = DefaultDoHEndpoint
	}
	return &DoH{httpLookup: newHTTPLookup(opts), endpoint: endpoint}
}

func (d *DoH) Lookup(ctx context.Context, fqdn string) (domain.Verdict, error) {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return domain.Verdict{}, domain.NewLookupError(domain.KindProtocol, fqdn, err)
	}
	q := u.Query()
	q.Set("name", fqdn)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Verdict{}, domain.NewLookupError(domain.KindProtocol, fqdn, err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := d.do(req, fqdn)
	if err != nil {
		return domain.Verdict{}, err
	}
	defer resp.Body.Close()

	var body dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Verdict{}, domain.NewLookupError(domain.KindProtocol, fqdn, fmt.Errorf("decode DNS response: %w", err))
	}

	available := body.Status == rcodeNXDomain
	status := "likely registered"
	if available {
		status = "likely available"
	}
	return domain.Verdict{
		Available: available,
		Status:    status,
		Method:    "DNS",
		Raw: map[string]any{
			"rcode":   body.Status,
			"answers": len(body.Answer),
		},
	}, nil
}
