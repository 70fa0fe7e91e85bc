// Package connector talks to the ingestion connectors that own the raw
// provider data. The dashboard only ever asks them to re-fetch a window; rows
// always arrive through the ingestion path, never through this client.
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	backfilldomain "github.com/smallbiznis/metrica/internal/backfill/domain"
	"github.com/smallbiznis/metrica/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("connector_not_configured")

type backfillRequest struct {
	AccountID string `json:"account_id"`
	From      string `json:"from"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

type Client struct {
	baseURL string
	token   string
	log     *zap.Logger
	client  *http.Client
}

func New(p Params) backfilldomain.Trigger {
	return &Client{
		baseURL: strings.TrimRight(p.Config.ConnectorBaseURL, "/"),
		token:   p.Config.ConnectorToken,
		log:     p.Log.Named("connector.client"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Backfill asks the connector to re-fetch one account from the given date
// forward. Connector errors come back verbatim so the orchestrator can spot an
// embedded cooldown.
func (c *Client) Backfill(ctx context.Context, accountID string, from time.Time) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(backfillRequest{
		AccountID: accountID,
		From:      from.Format("2006-01-02"),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/backfill", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed errorResponse
	message := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		message = parsed.Error.Message
		if message == "" {
			message = parsed.Message
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = resp.Status
	}

	c.log.Warn("backfill request rejected",
		zap.String("account_id", accountID),
		zap.Int("status", resp.StatusCode),
		zap.String("message", message),
	)
	return fmt.Errorf("connector backfill: %s", message)
}

var Module = fx.Module("connector.client",
	fx.Provide(New),
)
