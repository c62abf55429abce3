package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

const apiVersion = "2023-11-01"

// Document is a single search index document
type Document map[string]any

// SearchOptions refine an advanced search
type SearchOptions struct {
	Filter  string
	OrderBy []string
	Select  []string
	Facets  []string
}

// SearchResult carries the documents of an advanced search together with
// facet buckets and the total match count
type SearchResult struct {
	Documents []Document
	Facets    map[string]any
	Count     int64
}

// Client queries a single search index using key authentication
type Client struct {
	endpoint  string
	indexName string
	apiKey    string

	client *retryablehttp.Client
}

// NewClient creates a search client for the given index
func NewClient(endpoint, indexName, apiKey string) (*Client, error) {
	if endpoint == "" || indexName == "" || apiKey == "" {
		return nil, fmt.Errorf("endpoint, indexName and apiKey are all required")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 30 * time.Second
	client.Logger = nil

	return &Client{
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		indexName: indexName,
		apiKey:    apiKey,
		client:    client,
	}, nil
}

type searchRequest struct {
	Search                string   `json:"search"`
	Top                   int      `json:"top,omitempty"`
	Count                 bool     `json:"count"`
	Filter                string   `json:"filter,omitempty"`
	OrderBy               string   `json:"orderby,omitempty"`
	Select                string   `json:"select,omitempty"`
	Facets                []string `json:"facets,omitempty"`
	QueryType             string   `json:"queryType,omitempty"`
	SemanticConfiguration string   `json:"semanticConfiguration,omitempty"`
	Captions              string   `json:"captions,omitempty"`
}

type searchResponse struct {
	Count  int64          `json:"@odata.count"`
	Facets map[string]any `json:"@search.facets"`
	Value  []Document     `json:"value"`
}

// Search runs a plain full-text query and returns the top matching documents
func (c *Client) Search(ctx context.Context, searchText string, top int) ([]Document, error) {
	response, err := c.postSearch(ctx, &searchRequest{
		Search: searchText,
		Top:    top,
		Count:  true,
	})
	if err != nil {
		return nil, err
	}
	return response.Value, nil
}

// AdvancedSearch runs a full Lucene query with optional filtering, ordering,
// field selection and facets
func (c *Client) AdvancedSearch(ctx context.Context, searchText string, options *SearchOptions) (*SearchResult, error) {
	request := &searchRequest{
		Search:    searchText,
		Count:     true,
		QueryType: "full",
	}
	if options != nil {
		request.Filter = options.Filter
		request.OrderBy = strings.Join(options.OrderBy, ",")
		request.Select = strings.Join(options.Select, ",")
		request.Facets = options.Facets
	}

	response, err := c.postSearch(ctx, request)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Documents: response.Value,
		Facets:    response.Facets,
		Count:     response.Count,
	}, nil
}

// SemanticSearch runs a semantically ranked query with extractive captions
func (c *Client) SemanticSearch(ctx context.Context, searchText, configurationName string, top int) ([]Document, error) {
	response, err := c.postSearch(ctx, &searchRequest{
		Search:                searchText,
		Top:                   top,
		Count:                 true,
		QueryType:             "semantic",
		SemanticConfiguration: configurationName,
		Captions:              "extractive",
	})
	if err != nil {
		return nil, err
	}
	return response.Value, nil
}

// Suggest returns type-ahead suggestions from the named suggester
func (c *Client) Suggest(ctx context.Context, searchText, suggesterName string, top int) ([]Document, error) {
	requestBody := map[string]any{
		"search":        searchText,
		"suggesterName": suggesterName,
		"top":           top,
	}

	requestURL := fmt.Sprintf("%s/indexes/%s/docs/search.post.suggest?api-version=%s",
		c.endpoint, url.PathEscape(c.indexName), apiVersion)

	body, err := c.doRequest(ctx, http.MethodPost, requestURL, requestBody)
	if err != nil {
		return nil, fmt.Errorf("suggestion request failed: %w", err)
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion response: %w", err)
	}
	return response.Value, nil
}

// LookupDocument retrieves a single document by its key
func (c *Client) LookupDocument(ctx context.Context, key string) (Document, error) {
	requestURL := fmt.Sprintf("%s/indexes/%s/docs/%s?api-version=%s",
		c.endpoint, url.PathEscape(c.indexName), url.PathEscape(key), apiVersion)

	body, err := c.doRequest(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("document lookup failed: %w", err)
	}

	var document Document
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return document, nil
}

func (c *Client) postSearch(ctx context.Context, request *searchRequest) (*searchResponse, error) {
	requestURL := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		c.endpoint, url.PathEscape(c.indexName), apiVersion)

	body, err := c.doRequest(ctx, http.MethodPost, requestURL, request)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return &response, nil
}

func (c *Client) doRequest(ctx context.Context, method, requestURL string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(bodyJSON)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().Str("method", method).Str("url", requestURL).Msg("Querying search index")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search service returned status %d, body: %s", resp.StatusCode, string(responseBody))
	}

	return responseBody, nil
}
