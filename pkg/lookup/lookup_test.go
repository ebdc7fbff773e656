package lookup_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uberswe/domaingen/pkg/api"
	"github.com/uberswe/domaingen/pkg/domain"
	"github.com/uberswe/domaingen/pkg/lookup"
)

func TestDoH_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/dns-json", r.Header.Get("Accept"))
		switch r.URL.Query().Get("name") {
		case "free.com":
			fmt.Fprint(w, `{"Status":3,"TC":false}`)
		case "taken.com":
			fmt.Fprint(w, `{"Status":0,"Answer":[{"name":"taken.com.","type":1,"data":"1.2.3.4"}]}`)
		case "busy.com":
			w.WriteHeader(http.StatusTooManyRequests)
		case "broken.com":
			fmt.Fprint(w, `not json`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	d := lookup.NewDoH(srv.URL, lookup.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	v, err := d.Lookup(ctx, "free.com")
	require.NoError(t, err)
	assert.True(t, v.Available)
	assert.Equal(t, "DNS", v.Method)

	v, err = d.Lookup(ctx, "taken.com")
	require.NoError(t, err)
	assert.False(t, v.Available)
	assert.Equal(t, 1, v.Raw["answers"])

	_, err = d.Lookup(ctx, "busy.com")
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	_, err = d.Lookup(ctx, "broken.com")
	assert.ErrorIs(t, err, domain.ErrProtocol)

	_, err = d.Lookup(ctx, "other.com")
	assert.ErrorIs(t, err, domain.ErrProtocol)

	var lerr *domain.LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "other.com", lerr.Name)
}

func TestDoH_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := lookup.NewDoH(url).Lookup(context.Background(), "x.com")
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestWhoisXML_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "key", q.Get("apiKey"))
		if q.Get("domainName") == "free.io" {
			fmt.Fprint(w, `{"registered":false,"domainAvailability":"AVAILABLE"}`)
			return
		}
		fmt.Fprint(w, `{"registered":true,"domainAvailability":"UNAVAILABLE","registrar":"Example Registrar"}`)
	}))
	defer srv.Close()

	wl := lookup.NewWhoisXML("key", lookup.WithHTTPClient(srv.Client())).WithEndpoint(srv.URL)

	v, err := wl.Lookup(context.Background(), "free.io")
	require.NoError(t, err)
	assert.True(t, v.Available)
	assert.Equal(t, "AVAILABLE", v.Status)
	assert.Equal(t, "WHOIS", v.Method)

	v, err = wl.Lookup(context.Background(), "taken.io")
	require.NoError(t, err)
	assert.False(t, v.Available)
	assert.Equal(t, "Example Registrar", v.Raw["registrar"])
}

type fakeLoopia struct {
	status string
	err    error
}

func (f fakeLoopia) DomainIsFree(context.Context, string) (string, error) {
	return f.status, f.err
}

func TestLoopia_Lookup(t *testing.T) {
	tests := []struct {
		name      string
		client    fakeLoopia
		available bool
		wantErr   error
	}{
		{"free", fakeLoopia{status: api.StatusFree}, true, nil},
		{"occupied", fakeLoopia{status: api.StatusOccupied}, false, nil},
		{"rate limited status", fakeLoopia{status: api.StatusRateLimited}, false, domain.ErrRateLimited},
		{"bad indata", fakeLoopia{status: api.StatusBadIndata}, false, domain.ErrProtocol},
		{"unauthorized", fakeLoopia{err: api.ErrUnauthorized}, false, domain.ErrProtocol},
		{"http 429", fakeLoopia{err: errors.New("429 Too Many Requests")}, false, domain.ErrRateLimited},
		{"transport", fakeLoopia{err: errors.New("connection reset by peer")}, false, domain.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := lookup.NewLoopia(tt.client).Lookup(context.Background(), "example.se")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.available, v.Available)
			assert.Equal(t, "LOOPIA", v.Method)
		})
	}
}

func TestNew(t *testing.T) {
	cfg := domain.DefaultConfig()
	l, err := lookup.New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &lookup.DoH{}, l)

	cfg.Backend = "whois"
	_, err = lookup.New(cfg)
	assert.True(t, domain.IsConfigError(err))

	cfg.WhoisAPIKey = "key"
	l, err = lookup.New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &lookup.WhoisXML{}, l)

	cfg.Backend = "loopia"
	_, err = lookup.New(cfg)
	assert.True(t, domain.IsConfigError(err))

	cfg.Backend = "carrier-pigeon"
	_, err = lookup.New(cfg)
	assert.True(t, domain.IsConfigError(err))
}

func TestFunc(t *testing.T) {
	var l lookup.Lookup = lookup.Func(func(_ context.Context, fqdn string) (domain.Verdict, error) {
		return domain.Verdict{Available: fqdn == "a.com"}, nil
	})
	v, err := l.Lookup(context.Background(), "a.com")
	require.NoError(t, err)
	assert.True(t, v.Available)
}
