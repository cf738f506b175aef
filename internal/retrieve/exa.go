package retrieve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	defaultExaBaseURL = "https://api.exa.ai"
	exaKeyEnv         = "EXA_KEY"
	exaNumResults     = 3
	companySummary    = "Answer the following questions with no more words than necessary. " +
		"What field does this company work in? What problem does it solve specifically? " +
		"How big is the company? Answer format: Field: ... Problem Solved: ... Size: ... "
)

// HTTPDoer abstracts HTTP clients used by backends.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Exa talks to the Exa contents and search API.
type Exa struct {
	APIKey  string
	BaseURL string
	Client  HTTPDoer
}

// ExaFromEnv builds an Exa client from EXA_KEY.
func ExaFromEnv(client HTTPDoer) (*Exa, error) {
	return NewExa(os.Getenv(exaKeyEnv), "", client)
}

// NewExa constructs an Exa client with explicit settings.
func NewExa(apiKey, baseURL string, client HTTPDoer) (*Exa, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%s is required for the exa backend", exaKeyEnv)
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultExaBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Exa{
		APIKey:  strings.TrimSpace(apiKey),
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}, nil
}

type exaContentsRequest struct {
	URLs []string `json:"urls"`
	Text bool     `json:"text"`
}

type exaSummaryOptions struct {
	Query string `json:"query"`
}

type exaContentsOptions struct {
	Text      bool              `json:"text"`
	Summary   exaSummaryOptions `json:"summary"`
	Livecrawl string            `json:"livecrawl"`
}

type exaSearchRequest struct {
	Query      string             `json:"query"`
	Type       string             `json:"type"`
	Category   string             `json:"category"`
	NumResults int                `json:"numResults"`
	Contents   exaContentsOptions `json:"contents"`
}

type exaResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Summary string `json:"summary"`
}

type exaResponse struct {
	Results []exaResult `json:"results"`
}

// Fetch returns the crawled text of url.
func (e *Exa) Fetch(ctx context.Context, url string) (string, error) {
	var resp exaResponse
	if err := e.post(ctx, "/contents", exaContentsRequest{URLs: []string{url}, Text: true}, &resp); err != nil {
		return "", err
	}
	texts := make([]string, 0, len(resp.Results))
	for _, result := range resp.Results {
		if text := strings.TrimSpace(result.Text); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n\n"), nil
}

// Search returns per-result company summaries for query.
func (e *Exa) Search(ctx context.Context, query string) ([]string, error) {
	body := exaSearchRequest{
		Query:      query,
		Type:       "keyword",
		Category:   "company",
		NumResults: exaNumResults,
		Contents: exaContentsOptions{
			Text:      true,
			Summary:   exaSummaryOptions{Query: companySummary},
			Livecrawl: "always",
		},
	}
	var resp exaResponse
	if err := e.post(ctx, "/search", body, &resp); err != nil {
		return nil, err
	}
	summaries := make([]string, 0, len(resp.Results))
	for _, result := range resp.Results {
		if summary := strings.TrimSpace(result.Summary); summary != "" {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

func (e *Exa) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("exa error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode exa response: %w", err)
	}
	return nil
}
