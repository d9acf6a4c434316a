package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// certSource reads security advisories from an RSS or Atom feed. CERT
// teams publish in both formats, so the reader detects the root element
// rather than requiring one.
type certSource struct {
	name     string
	client   *http.Client
	feedURL  string
	maxItems int
}

func newCERTSource(cfg SourceConfig, client *http.Client) *certSource {
	return &certSource{
		name:     cfg.Name,
		client:   client,
		feedURL:  cfg.URL,
		maxItems: cfg.MaxItems,
	}
}

func (s *certSource) Name() string { return s.name }

func (s *certSource) Fetch(ctx context.Context) ([]*core.ThreatDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("advisory feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("advisory feed returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading advisory feed: %w", err)
	}

	items, err := parseAdvisoryFeed(body)
	if err != nil {
		return nil, err
	}

	docs := make([]*core.ThreatDocument, 0, len(items))
	for _, item := range items {
		doc := s.itemToDocument(item)
		if doc == nil {
			continue
		}
		docs = append(docs, doc)
		if s.maxItems > 0 && len(docs) >= s.maxItems {
			break
		}
	}
	return docs, nil
}

// advisoryItem is the format-neutral shape of one feed entry.
type advisoryItem struct {
	id      string
	title   string
	link    string
	summary string
	date    string
}

// parseAdvisoryFeed decodes RSS 2.0 or Atom based on the root element.
func parseAdvisoryFeed(body []byte) ([]advisoryItem, error) {
	var probe struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("parsing advisory feed: %w", err)
	}

	switch probe.XMLName.Local {
	case "rss":
		var feed rssFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			return nil, fmt.Errorf("parsing RSS feed: %w", err)
		}
		items := make([]advisoryItem, 0, len(feed.Channel.Items))
		for _, item := range feed.Channel.Items {
			items = append(items, advisoryItem{
				id:      item.GUID,
				title:   item.Title,
				link:    item.Link,
				summary: item.Description,
				date:    item.PubDate,
			})
		}
		return items, nil
	case "feed":
		var feed atomFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			return nil, fmt.Errorf("parsing Atom feed: %w", err)
		}
		items := make([]advisoryItem, 0, len(feed.Entries))
		for _, entry := range feed.Entries {
			summary := entry.Summary
			if summary == "" {
				summary = entry.Content
			}
			items = append(items, advisoryItem{
				id:      entry.ID,
				title:   entry.Title,
				link:    entry.Link.Href,
				summary: summary,
				date:    entry.Updated,
			})
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unrecognized advisory feed root element %q", probe.XMLName.Local)
	}
}

func (s *certSource) itemToDocument(item advisoryItem) *core.ThreatDocument {
	text := strings.TrimSpace(item.title)
	if summary := strings.TrimSpace(item.summary); summary != "" {
		text += "\n\n" + summary
	}
	if text == "" {
		return nil
	}

	// Fall back to the link, then the title, for identity when the feed
	// omits stable entry IDs.
	id := item.id
	if id == "" {
		id = item.link
	}
	if id == "" {
		id = item.title
	}

	doc := &core.ThreatDocument{
		Id:            core.IDFromContent(s.name + ":" + id),
		Source:        s.name,
		IndicatorType: "advisory",
		Date:          item.date,
		Text:          text,
	}
	if item.link != "" {
		doc.Metadata = map[string]string{"url": item.link}
	}
	return doc
}

// RSS 2.0 structures.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	GUID        string `xml:"guid"`
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// Atom structures.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string   `xml:"id"`
	Title   string   `xml:"title"`
	Summary string   `xml:"summary"`
	Content string   `xml:"content"`
	Updated string   `xml:"updated"`
	Link    atomLink `xml:"link"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}
