package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// otxAPIBase is the OTX subscribed pulses endpoint. Declared as a var so
// tests can substitute an httptest server.
var otxAPIBase = "https://otx.alienvault.com/api/v1/pulses/subscribed"

const otxPageSize = 50

// otxSource fetches subscribed pulses from AlienVault OTX.
type otxSource struct {
	name     string
	client   *http.Client
	apiKey   string
	baseURL  string
	maxItems int
}

func newOTXSource(cfg SourceConfig, client *http.Client, apiKey string) *otxSource {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = otxAPIBase
	}
	return &otxSource{
		name:     cfg.Name,
		client:   client,
		apiKey:   apiKey,
		baseURL:  baseURL,
		maxItems: cfg.MaxItems,
	}
}

func (s *otxSource) Name() string { return s.name }

// Fetch retrieves subscribed pulses, following pagination until the feed
// is exhausted or maxItems pulses have been collected.
func (s *otxSource) Fetch(ctx context.Context) ([]*core.ThreatDocument, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w for OTX source %q", ErrMissingAPIKey, s.name)
	}

	params := url.Values{"limit": {strconv.Itoa(otxPageSize)}}
	next := s.baseURL + "?" + params.Encode()

	var docs []*core.ThreatDocument
	for next != "" {
		page, err := s.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}

		for _, pulse := range page.Results {
			docs = append(docs, pulseToDocument(s.name, pulse))
			if s.maxItems > 0 && len(docs) >= s.maxItems {
				return docs, nil
			}
		}
		next = page.Next
	}
	return docs, nil
}

func (s *otxSource) fetchPage(ctx context.Context, pageURL string) (*otxResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-OTX-API-KEY", s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OTX API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OTX API returned HTTP %d", resp.StatusCode)
	}

	var page otxResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("parsing OTX response: %w", err)
	}
	return &page, nil
}

// pulseToDocument flattens a pulse into one document. The indicator list
// is appended to the text so extraction sees the IOCs alongside the
// narrative description.
func pulseToDocument(source string, pulse otxPulse) *core.ThreatDocument {
	var b strings.Builder
	b.WriteString(pulse.Name)
	if pulse.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(pulse.Description)
	}
	if len(pulse.Indicators) > 0 {
		b.WriteString("\n\nIndicators:")
		for _, ind := range pulse.Indicators {
			b.WriteString("\n")
			b.WriteString(ind.Type)
			b.WriteString(": ")
			b.WriteString(ind.Indicator)
		}
	}

	doc := &core.ThreatDocument{
		Id:            core.IDFromContent(source + ":" + pulse.ID),
		Source:        source,
		IndicatorType: "pulse",
		Indicator:     pulse.ID,
		Date:          pulse.Modified,
		Text:          strings.TrimSpace(b.String()),
		Metadata:      map[string]string{},
	}
	if pulse.AuthorName != "" {
		doc.Metadata["author"] = pulse.AuthorName
	}
	if len(pulse.Tags) > 0 {
		doc.Metadata["tags"] = strings.Join(pulse.Tags, ",")
	}
	return doc
}

// OTX API JSON structures.
type otxResponse struct {
	Count    int        `json:"count"`
	Next     string     `json:"next"`
	Previous string     `json:"previous"`
	Results  []otxPulse `json:"results"`
}

type otxPulse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	AuthorName  string         `json:"author_name"`
	Created     string         `json:"created"`
	Modified    string         `json:"modified"`
	Tags        []string       `json:"tags"`
	Indicators  []otxIndicator `json:"indicators"`
}

type otxIndicator struct {
	Indicator   string `json:"indicator"`
	Type        string `json:"type"`
	Description string `json:"description"`
}
