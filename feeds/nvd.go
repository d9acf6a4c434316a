package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// nvdAPIBase is the NVD CVE 2.0 endpoint. Declared as a var so tests can
// substitute an httptest server.
var nvdAPIBase = "https://services.nvd.nist.gov/rest/json/cves/2.0"

const nvdPageSize = 200

// nvdSource fetches recent CVE records from the NVD CVE 2.0 API.
type nvdSource struct {
	name     string
	client   *http.Client
	apiKey   string
	baseURL  string
	maxItems int
}

func newNVDSource(cfg SourceConfig, client *http.Client, apiKey string) *nvdSource {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = nvdAPIBase
	}
	return &nvdSource{
		name:     cfg.Name,
		client:   client,
		apiKey:   apiKey,
		baseURL:  baseURL,
		maxItems: cfg.MaxItems,
	}
}

func (s *nvdSource) Name() string { return s.name }

// Fetch pages through the CVE API with a results-per-page window until
// totalResults is reached or maxItems CVEs have been collected. The API
// key is optional; NVD rate-limits unauthenticated callers harder, which
// DoWithRetry absorbs.
func (s *nvdSource) Fetch(ctx context.Context) ([]*core.ThreatDocument, error) {
	var docs []*core.ThreatDocument

	startIndex := 0
	for {
		page, err := s.fetchPage(ctx, startIndex)
		if err != nil {
			return nil, err
		}

		for _, vuln := range page.Vulnerabilities {
			doc := cveToDocument(s.name, vuln.CVE)
			if doc == nil {
				continue
			}
			docs = append(docs, doc)
			if s.maxItems > 0 && len(docs) >= s.maxItems {
				return docs, nil
			}
		}

		startIndex += len(page.Vulnerabilities)
		if startIndex >= page.TotalResults || len(page.Vulnerabilities) == 0 {
			return docs, nil
		}
	}
}

func (s *nvdSource) fetchPage(ctx context.Context, startIndex int) (*nvdResponse, error) {
	params := url.Values{
		"resultsPerPage": {strconv.Itoa(nvdPageSize)},
		"startIndex":     {strconv.Itoa(startIndex)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("apiKey", s.apiKey)
	}

	resp, err := DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("NVD API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NVD API returned HTTP %d", resp.StatusCode)
	}

	var page nvdResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("parsing NVD response: %w", err)
	}
	return &page, nil
}

// cveToDocument converts a CVE record into a document using its English
// description. Records without one are skipped.
func cveToDocument(source string, cve nvdCVE) *core.ThreatDocument {
	description := ""
	for _, d := range cve.Descriptions {
		if d.Lang == "en" {
			description = d.Value
			break
		}
	}
	if description == "" {
		return nil
	}

	return &core.ThreatDocument{
		Id:            core.IDFromContent(source + ":" + cve.ID),
		Source:        source,
		IndicatorType: "cve",
		Indicator:     cve.ID,
		Date:          cve.Published,
		Text:          cve.ID + ": " + description,
	}
}

// NVD CVE 2.0 API JSON structures.
type nvdResponse struct {
	ResultsPerPage  int               `json:"resultsPerPage"`
	StartIndex      int               `json:"startIndex"`
	TotalResults    int               `json:"totalResults"`
	Vulnerabilities []nvdVulnerability `json:"vulnerabilities"`
}

type nvdVulnerability struct {
	CVE nvdCVE `json:"cve"`
}

type nvdCVE struct {
	ID           string           `json:"id"`
	Published    string           `json:"published"`
	LastModified string           `json:"lastModified"`
	Descriptions []nvdDescription `json:"descriptions"`
}

type nvdDescription struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}
