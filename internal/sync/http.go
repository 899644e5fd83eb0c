package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/jgehrke/worklog/config"
	"github.com/jgehrke/worklog/internal/record"
)

var errSyncNotConfigured = errors.New(
	"sync is not configured: set sync.endpoint in the configuration file",
)

// HTTPReplicator talks JSON over HTTPS to the replication backend, using
// client-credentials tokens when a token URL is configured.
type HTTPReplicator struct {
	endpoint string
	client   *http.Client
}

// NewHTTPReplicator builds a replicator from the sync settings.
func NewHTTPReplicator(
	ctx context.Context,
	cfg config.SyncConfig,
) (*HTTPReplicator, error) {
	if cfg.Endpoint == "" {
		return nil, errSyncNotConfigured
	}

	client := &http.Client{Timeout: 30 * time.Second}

	if cfg.TokenURL != "" {
		creds := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}

		client = creds.Client(ctx)
	}

	return &HTTPReplicator{
		endpoint: cfg.Endpoint,
		client:   client,
	}, nil
}

func (h *HTTPReplicator) Push(
	ctx context.Context,
	records []*record.DayRecord,
) error {
	body, err := json.Marshal(records)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		h.endpoint+"/records",
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push rejected: %s", resp.Status)
	}

	return nil
}

func (h *HTTPReplicator) Pull(
	ctx context.Context,
	since time.Time,
) ([]*record.DayRecord, error) {
	endpoint := h.endpoint + "/records"

	if !since.IsZero() {
		endpoint += "?since=" + url.QueryEscape(since.Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		endpoint,
		nil,
	)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("pull rejected: %s", resp.Status)
	}

	var records []*record.DayRecord

	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, err
	}

	return records, nil
}
