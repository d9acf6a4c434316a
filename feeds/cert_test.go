package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>CERT Advisories</title>
    <item>
      <guid>VU#123456</guid>
      <title>Vulnerability in widget library</title>
      <link>https://cert.example/advisories/VU123456</link>
      <description>A heap overflow allows remote code execution.</description>
      <pubDate>Mon, 03 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <guid>VU#654321</guid>
      <title>Default credentials in router firmware</title>
      <link>https://cert.example/advisories/VU654321</link>
      <description>Devices ship with a hardcoded admin password.</description>
      <pubDate>Tue, 04 Aug 2026 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Security Bulletins</title>
  <entry>
    <id>urn:uuid:advisory-1</id>
    <title>Critical patch for directory traversal</title>
    <link href="https://bulletins.example/1"/>
    <summary>Path handling flaw allows reading arbitrary files.</summary>
    <updated>2026-08-05T09:00:00Z</updated>
  </entry>
</feed>`

func serveFeed(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(body))
	}))
}

func TestCERTFetch_RSS(t *testing.T) {
	server := serveFeed(sampleRSS)
	defer server.Close()

	source := newCERTSource(SourceConfig{Name: "cert", Kind: SourceKindCERT, URL: server.URL}, server.Client())
	docs, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Fetch() returned %d documents, want 2", len(docs))
	}

	first := docs[0]
	if first.Source != "cert" || first.IndicatorType != "advisory" {
		t.Errorf("unexpected document identity: %+v", first)
	}
	if !strings.Contains(first.Text, "Vulnerability in widget library") {
		t.Errorf("document text missing title: %q", first.Text)
	}
	if !strings.Contains(first.Text, "heap overflow") {
		t.Errorf("document text missing description: %q", first.Text)
	}
	if first.Metadata["url"] != "https://cert.example/advisories/VU123456" {
		t.Errorf("url metadata = %q", first.Metadata["url"])
	}
	if first.Date != "Mon, 03 Aug 2026 10:00:00 GMT" {
		t.Errorf("document date = %q", first.Date)
	}
}

func TestCERTFetch_Atom(t *testing.T) {
	server := serveFeed(sampleAtom)
	defer server.Close()

	source := newCERTSource(SourceConfig{Name: "bulletins", URL: server.URL}, server.Client())
	docs, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Fetch() returned %d documents, want 1", len(docs))
	}
	if !strings.Contains(docs[0].Text, "directory traversal") {
		t.Errorf("document text = %q", docs[0].Text)
	}
	if docs[0].Metadata["url"] != "https://bulletins.example/1" {
		t.Errorf("url metadata = %q", docs[0].Metadata["url"])
	}
}

func TestCERTFetch_MaxItems(t *testing.T) {
	server := serveFeed(sampleRSS)
	defer server.Close()

	source := newCERTSource(SourceConfig{Name: "cert", URL: server.URL, MaxItems: 1}, server.Client())
	docs, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("Fetch() returned %d documents, want 1", len(docs))
	}
}

func TestParseAdvisoryFeed_UnknownRoot(t *testing.T) {
	_, err := parseAdvisoryFeed([]byte(`<html><body>not a feed</body></html>`))
	if err == nil {
		t.Fatal("expected error for non-feed XML")
	}
	if !strings.Contains(err.Error(), "unrecognized advisory feed root") {
		t.Errorf("unexpected error: %v", err)
	}
}
