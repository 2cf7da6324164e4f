package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundmatch/internal/config"
	"github.com/sells-group/fundmatch/internal/extract"
	"github.com/sells-group/fundmatch/internal/fetch"
	"github.com/sells-group/fundmatch/internal/matcher"
	"github.com/sells-group/fundmatch/internal/model"
	"github.com/sells-group/fundmatch/internal/store"
)

func newTestAPIServer(t *testing.T) *apiServer {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(t.Context()))

	return &apiServer{
		st: st,
		pipe: &pipeline{
			fetcher:   fetch.New(config.FetchConfig{RequestsPerSec: 100}),
			extractor: extract.NewHeuristicExtractor(),
			engine:    matcher.New(matcher.DefaultConfig()),
			funds: []model.Fund{
				{
					Name:       "Summit Ridge Capital",
					Industries: []string{"Industrial"},
					Regions:    []string{"US"},
					DealTypes:  []string{"Buyout"},
				},
				{
					Name:      "Meridian Growth Partners",
					Regions:   []string{"Europe"},
					DealTypes: []string{"Growth Equity"},
				},
			},
			defaultDealType: "buyout",
		},
		topK: 5,
	}
}

func TestServeHealth(t *testing.T) {
	srv := httptest.NewServer(newTestAPIServer(t).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeFunds(t *testing.T) {
	srv := httptest.NewServer(newTestAPIServer(t).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/funds")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Funds []model.Fund `json:"funds"`
		Count int          `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Funds, 2)
	assert.Equal(t, "Summit Ridge Capital", body.Funds[0].Name)
}

func TestServeMatch(t *testing.T) {
	// Company site the fetcher will crawl.
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Acme Machining | CNC</title></head>
<body><main>Precision manufacturing and fabrication services across the United States.</main></body></html>`))
	}))
	defer site.Close()

	srv := httptest.NewServer(newTestAPIServer(t).router())
	defer srv.Close()

	payload, _ := json.Marshal(matchRequest{URL: site.URL, Context: "open to majority sale"})
	resp, err := http.Post(srv.URL+"/api/match", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.MatchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "Acme Machining", result.Profile.Name)
	require.Len(t, result.Shortlist, 2)
	// Industrial US buyout fund outranks the off-region growth fund.
	assert.Equal(t, "Summit Ridge Capital", result.Shortlist[0].Fund)
	assert.Greater(t, result.Shortlist[0].Score, result.Shortlist[1].Score)
}

func TestServeMatchWithProfile(t *testing.T) {
	srv := httptest.NewServer(newTestAPIServer(t).router())
	defer srv.Close()

	payload, _ := json.Marshal(matchRequest{
		Profile: &model.CompanyProfile{
			Name:       "Acme Machining",
			URL:        "https://acmemachining.example",
			Industries: []string{"Industrial"},
			Locations:  []string{"United States"},
		},
		DealType: "buyout",
		TopK:     1,
	})
	resp, err := http.Post(srv.URL+"/api/match", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.MatchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "Acme Machining", result.Profile.Name)
	require.Len(t, result.Shortlist, 1)
	assert.Equal(t, "Summit Ridge Capital", result.Shortlist[0].Fund)
}

func TestServeMatchSavesRun(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Acme</title></head><body><main>Manufacturing services.</main></body></html>`))
	}))
	defer site.Close()

	api := newTestAPIServer(t)
	srv := httptest.NewServer(api.router())
	defer srv.Close()

	payload, _ := json.Marshal(matchRequest{URL: site.URL, Save: true})
	resp, err := http.Post(srv.URL+"/api/match", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	runs, err := api.st.ListRuns(t.Context(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, site.URL, runs[0].CompanyURL)
	require.NotNil(t, runs[0].Result)
}

func TestServeMatchValidation(t *testing.T) {
	srv := httptest.NewServer(newTestAPIServer(t).router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/match", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/match", "application/json", bytes.NewReader([]byte(`not json`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeRunNotFound(t *testing.T) {
	srv := httptest.NewServer(newTestAPIServer(t).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/runs/does-not-exist")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
