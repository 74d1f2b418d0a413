package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
	"github.com/medtravel/hospitaldirectory/pkg/config"
)

const (
	queryPath = "/wix-data/v2/items/query"

	// referencedItemLimit is the maximum number of referenced items the
	// data API expands per reference field.
	referencedItemLimit = 50
)

// Client queries Wix Data collections over REST.
type Client struct {
	baseURL    string
	apiKey     string
	siteID     string
	httpClient *http.Client
	metrics    *observability.Metrics
}

var _ providers.CMSProvider = (*Client)(nil)

// NewClient creates a CMS client. metrics may be nil.
func NewClient(cfg *config.CMSConfig, metrics *observability.Metrics) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("CMS base URL must be set")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		siteID:     cfg.SiteID,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
	}, nil
}

type queryRequest struct {
	DataCollectionID      string                 `json:"dataCollectionId"`
	Query                 queryBody              `json:"query"`
	ReferencedItemOptions []referencedItemOption `json:"referencedItemOptions,omitempty"`
	ReturnTotalCount      bool                   `json:"returnTotalCount"`
}

type queryBody struct {
	Filter map[string]any `json:"filter,omitempty"`
	Sort   []sortSpec     `json:"sort,omitempty"`
	Paging paging         `json:"paging"`
}

type sortSpec struct {
	FieldName string `json:"fieldName"`
	Order     string `json:"order"`
}

type paging struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type referencedItemOption struct {
	FieldName string `json:"fieldName"`
	Limit     int    `json:"limit"`
}

type queryResponse struct {
	DataItems []struct {
		ID   string         `json:"id"`
		Data map[string]any `json:"data"`
	} `json:"dataItems"`
	PagingMetadata struct {
		Count int `json:"count"`
		Total int `json:"total"`
	} `json:"pagingMetadata"`
}

// Query runs q against the data API.
func (c *Client) Query(ctx context.Context, q *providers.CMSQuery) (*providers.CMSResult, error) {
	ctx, span := observability.StartSpan(ctx, "cms.Query", attribute.String("cms.collection", q.Collection))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.RecordCMSMetric(ctx, c.metrics, q.Collection, time.Since(start))
	}()

	payload, err := json.Marshal(buildRequest(q))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+queryPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}
	if c.siteID != "" {
		req.Header.Set("wix-site-id", c.siteID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("failed to query %s: %w", q.Collection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("CMS API error (status %d) querying %s: %s", resp.StatusCode, q.Collection, string(body))
		observability.RecordError(span, err)
		return nil, err
	}

	var decoded queryResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	result := &providers.CMSResult{
		Items:      make([]providers.CMSItem, 0, len(decoded.DataItems)),
		TotalCount: decoded.PagingMetadata.Total,
	}
	for _, item := range decoded.DataItems {
		data := providers.CMSItem(item.Data)
		if data == nil {
			data = providers.CMSItem{}
		}
		if _, ok := data["_id"]; !ok && item.ID != "" {
			data["_id"] = item.ID
		}
		result.Items = append(result.Items, data)
	}
	if result.TotalCount == 0 {
		result.TotalCount = len(result.Items)
	}
	span.SetAttributes(attribute.Int("cms.items", len(result.Items)))
	return result, nil
}

func buildRequest(q *providers.CMSQuery) queryRequest {
	req := queryRequest{
		DataCollectionID: q.Collection,
		Query: queryBody{
			Filter: buildFilter(q.Filters),
			Paging: paging{Limit: q.LimitN, Offset: q.SkipN},
		},
		ReturnTotalCount: true,
	}
	for _, s := range q.Sort {
		order := "ASC"
		if s.Descending {
			order = "DESC"
		}
		req.Query.Sort = append(req.Query.Sort, sortSpec{FieldName: s.Field, Order: order})
	}
	for _, field := range q.Includes {
		req.ReferencedItemOptions = append(req.ReferencedItemOptions, referencedItemOption{
			FieldName: field,
			Limit:     referencedItemLimit,
		})
	}
	return req
}

func buildFilter(filters []providers.CMSFilter) map[string]any {
	if len(filters) == 0 {
		return nil
	}

	clauses := make([]map[string]any, 0, len(filters))
	for _, f := range filters {
		var operand any = f.Value
		if f.Op == providers.OpHasSome {
			operand = f.Values
		}
		clauses = append(clauses, map[string]any{
			f.Field: map[string]any{string(f.Op): operand},
		})
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return map[string]any{"$and": clauses}
}
