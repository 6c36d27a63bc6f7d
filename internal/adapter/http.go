package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/utils"
	"github.com/MKhiriev/go-list-sync/models"
	"github.com/go-resty/resty/v2"
)

const (
	itemsPath      = "/api/v1/lists/{owner}/{listID}/items"
	operationsPath = "/api/v1/lists/{owner}/{listID}/items/batch"
)

type httpListSource struct {
	client *utils.HTTPClient

	logger *logger.Logger
}

// NewHTTPListSource constructs an HTTP/REST implementation of [ListSource].
// It normalises and validates cfg.BaseURL and bounds every request with
// cfg.Timeout. The account secret is sent as a bearer token.
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a valid URL.
func NewHTTPListSource(cfg config.Adapter, logger *logger.Logger) (ListSource, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter base url: %w", err)
	}

	return &httpListSource{
		client: utils.NewHTTPClient(baseURL, cfg.Timeout),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FetchList implements [ListSource] with GET /api/v1/lists/{owner}/{listID}/items.
func (h *httpListSource) FetchList(ctx context.Context, account models.Account, list models.ListRef) ([]string, error) {
	resp, err := h.request(ctx, account, list).Get(itemsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch list request: %w", ErrTransient, err)
	}
	if err = mapHTTPError(resp); err != nil {
		logger.FromContext(ctx).Debug().Str("list", list.String()).Int("status", resp.StatusCode()).Msg("fetch list rejected")
		return nil, err
	}

	var body models.ListItemsResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: decode list items: %w", ErrTransient, err)
	}
	if body.Items == nil {
		body.Items = []string{}
	}
	return body.Items, nil
}

// ApplyOperations implements [ListSource] with
// POST /api/v1/lists/{owner}/{listID}/items/batch. A 2xx response that still
// lists failed items is treated like 207 Multi-Status.
func (h *httpListSource) ApplyOperations(ctx context.Context, account models.Account, list models.ListRef, add, remove []string) error {
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}

	resp, err := h.request(ctx, account, list).
		SetHeader("Content-Type", "application/json").
		SetBody(models.ListOperationsRequest{Add: nonNil(add), Remove: nonNil(remove)}).
		Post(operationsPath)
	if err != nil {
		return fmt.Errorf("%w: apply operations request: %w", ErrTransient, err)
	}
	if err = mapHTTPError(resp); err != nil {
		logger.FromContext(ctx).Debug().Str("list", list.String()).Int("status", resp.StatusCode()).Msg("apply operations rejected")
		return err
	}

	var body models.ListOperationsResponse
	if len(resp.Body()) > 0 {
		if err = json.Unmarshal(resp.Body(), &body); err != nil {
			return fmt.Errorf("%w: decode apply response: %w", ErrTransient, err)
		}
	}
	if len(body.Failed) > 0 {
		return fmt.Errorf("%w: partially applied, %d of %d operations failed", ErrTransient, len(body.Failed), len(add)+len(remove))
	}
	return nil
}

func (h *httpListSource) request(ctx context.Context, account models.Account, list models.ListRef) *resty.Request {
	return h.client.R().
		SetContext(ctx).
		SetAuthToken(account.Secret).
		SetPathParams(map[string]string{
			"owner":  list.Owner,
			"listID": list.ListID,
		})
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
