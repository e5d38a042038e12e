package source

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"deliverycore/internal/snapshot"
)

// HTTPSource fetches a snapshot document from a remote endpoint, mirroring
// jira.dcClient's manual request construction and cookie/token auth instead
// of a third-party HTTP client library.
type HTTPSource struct {
	URL          string
	AuthToken    string
	AuthCookie   string
	RequestDelay time.Duration
	Client       *http.Client
}

func NewHTTPSource(url, authToken, authCookie string, requestDelay time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:          url,
		AuthToken:    authToken,
		AuthCookie:   authCookie,
		RequestDelay: requestDelay,
		Client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HTTPSource) Load() (*snapshot.State, error) {
	const op = "source.HTTPSource.Load"

	if h.RequestDelay > 0 {
		time.Sleep(h.RequestDelay)
	}

	req, err := http.NewRequest(http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, snapshot.InvalidInputf(op, "building request for %q: %v", h.URL, err)
	}
	if h.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+h.AuthToken)
	}
	if h.AuthCookie != "" {
		req.Header.Set("Cookie", h.AuthCookie)
	}
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, snapshot.Wrap(snapshot.KindInternalInvariant, op, "fetching snapshot", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, snapshot.NotFoundf(op, "snapshot endpoint %q returned 404", h.URL)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, snapshot.Wrap(snapshot.KindInternalInvariant, op,
			fmt.Sprintf("snapshot endpoint returned status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, snapshot.InvalidInputf(op, "snapshot response is not valid JSON: %v", err)
	}

	log.Debug().Str("url", h.URL).Int("milestones", len(doc.Milestones)).Msg("loaded snapshot over HTTP")

	state, err := snapshot.New(doc.toInput())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return state, nil
}
