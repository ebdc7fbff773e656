package httpapi_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uberswe/domaingen/internal/check"
	"github.com/uberswe/domaingen/internal/generate"
	"github.com/uberswe/domaingen/internal/httpapi"
	"github.com/uberswe/domaingen/pkg/domain"
	"github.com/uberswe/domaingen/pkg/lookup"
	"github.com/uberswe/domaingen/pkg/store"
)

type fixture struct {
	srv   *httptest.Server
	api   *httpapi.Server
	gen   *generate.Controller
	store *store.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	// names starting with "a" are free
	l := lookup.Func(func(_ context.Context, fqdn string) (domain.Verdict, error) {
		return domain.Verdict{Available: strings.HasPrefix(fqdn, "a"), Status: "ok", Method: "TEST"}, nil
	})
	gen := generate.NewController()
	st := store.NewMemory()
	api := httpapi.New(gen, check.NewScheduler(l), st, []string{".com"},
		httpapi.WithCheckOptions(check.Options{BatchSize: 10, BatchDelay: time.Millisecond, SuffixDelay: time.Millisecond}))

	srv := httptest.NewServer(api.Routes())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, api: api, gen: gen, store: st}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, f.srv.URL+path, nil)
	} else {
		req, err = http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	require.NoError(t, err)
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type candidatesResponse struct {
	Count      int      `json:"count"`
	Candidates []string `json:"candidates"`
}

func (f *fixture) generate(t *testing.T) {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/generation/start", `{"min_length":1,"max_length":1,"alphabet":"ab"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.gen.Wait(ctx))
}

func TestServer_GenerateAndCheck(t *testing.T) {
	f := newFixture(t)
	f.generate(t)

	got := decode[candidatesResponse](t, f.do(t, http.MethodGet, "/candidates", ""))
	assert.Equal(t, []string{"a", "b"}, got.Candidates)

	state := decode[domain.GenerationState](t, f.do(t, http.MethodGet, "/state", ""))
	assert.Equal(t, domain.PhaseCompleted, state.Phase)

	resp := f.do(t, http.MethodPost, "/check", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	f.api.Wait()

	checkState := decode[map[string]any](t, f.do(t, http.MethodGet, "/check", ""))
	assert.Equal(t, false, checkState["running"])

	got = decode[candidatesResponse](t, f.do(t, http.MethodGet, "/candidates?visible=1", ""))
	assert.Equal(t, []string{"a"}, got.Candidates)

	available := decode[[]domain.DomainInfo](t, f.do(t, http.MethodGet, "/available", ""))
	require.Len(t, available, 1)
	assert.Equal(t, "a.com", available[0].Name)

	status := decode[map[string]domain.CheckResult](t, f.do(t, http.MethodGet, "/status?candidate=b", ""))
	assert.False(t, status[".com"].Available)

	resp = f.do(t, http.MethodGet, "/status?candidate=zz", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	recs, err := f.store.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.RecordAvailable, recs[0].Status)
	assert.Equal(t, domain.RecordTaken, recs[1].Status)
}

func TestServer_Export(t *testing.T) {
	f := newFixture(t)
	f.generate(t)
	f.do(t, http.MethodPost, "/check", "")
	f.api.Wait()

	resp := f.do(t, http.MethodGet, "/export?format=csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	rows, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	resp = f.do(t, http.MethodGet, "/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_GenerationControl(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/generation/start", `{"min_length":0,"max_length":2,"alphabet":"ab"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/generation/resume", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/generation/start", `{"min_length":6,"max_length":8,"charset":{"letters":true,"digits":true}}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/generation/start", `{"min_length":1,"max_length":1,"alphabet":"ab"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/generation/pause", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.PhasePaused, decode[domain.GenerationState](t, resp).Phase)

	resp = f.do(t, http.MethodPost, "/generation/stop", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.PhaseStopped, decode[domain.GenerationState](t, resp).Phase)

	resp = f.do(t, http.MethodPost, "/generation/clear", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.PhaseIdle, decode[domain.GenerationState](t, resp).Phase)
}

func TestServer_Favorites(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/favorites/ab.com", `{"category":"short","note":"two letters"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/favorites/cd.com", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	favs := decode[[]domain.Favorite](t, f.do(t, http.MethodGet, "/favorites", ""))
	require.Len(t, favs, 2)
	assert.Equal(t, "ab.com", favs[0].Domain)
	assert.Equal(t, "short", favs[0].Category)

	resp = f.do(t, http.MethodDelete, "/favorites/ab.com", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = f.do(t, http.MethodDelete, "/favorites/ab.com", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/collections/favorites", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	favs = decode[[]domain.Favorite](t, f.do(t, http.MethodGet, "/favorites", ""))
	assert.Empty(t, favs)

	resp = f.do(t, http.MethodDelete, "/collections/everything", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
