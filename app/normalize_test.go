package app

import (
	"testing"
	"time"

	"newshub/adapter/feedxml"
	"newshub/internal/logger"
)

func parseItem(t *testing.T, feed string) *feedxml.Node {
	t.Helper()
	doc, err := feedxml.Parse([]byte(feed))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	items := feedxml.Items(doc)
	if len(items) == 0 {
		t.Fatal("no items in fixture")
	}
	return items[0]
}

func TestNormalizeItem_Basic(t *testing.T) {
	item := parseItem(t, `<rss><channel><item>
		<title>  Headline </title>
		<link>https://example.com/a</link>
		<description>body</description>
		<pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
	</item></channel></rss>`)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	draft, ok := normalizeItem(logger.Nop(), item, "src-1", now)
	if !ok {
		t.Fatal("normalizeItem() returned no draft")
	}
	if draft.Title != "Headline" {
		t.Errorf("Title = %q, want trimmed %q", draft.Title, "Headline")
	}
	if draft.URL != "https://example.com/a" {
		t.Errorf("URL = %q", draft.URL)
	}
	if draft.Content != "body" {
		t.Errorf("Content = %q", draft.Content)
	}
	if draft.SourceID != "src-1" {
		t.Errorf("SourceID = %q", draft.SourceID)
	}
	if !draft.Verified {
		t.Error("Verified = false, pipeline drafts are always verified")
	}
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600))
	if !draft.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", draft.PublishedAt, want)
	}
}

func TestNormalizeItem_MissingTitleOrLink(t *testing.T) {
	tests := []struct {
		name string
		feed string
	}{
		{"no title", `<rss><channel><item><link>https://example.com/a</link></item></channel></rss>`},
		{"empty title", `<rss><channel><item><title>   </title><link>https://example.com/a</link></item></channel></rss>`},
		{"no link", `<rss><channel><item><title>Headline</title></item></channel></rss>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := parseItem(t, tt.feed)
			if _, ok := normalizeItem(logger.Nop(), item, "src-1", time.Now()); ok {
				t.Error("normalizeItem() produced a draft, want drop")
			}
		})
	}
}

func TestNormalizeItem_HrefLinkEquivalence(t *testing.T) {
	textStyle := parseItem(t, `<rss><channel><item>
		<title>A</title><link>https://example.com/x</link>
	</item></channel></rss>`)
	attrStyle := parseItem(t, `<feed><entry>
		<title>A</title><link rel="alternate" href="https://example.com/x"/>
	</entry></feed>`)

	d1, ok1 := normalizeItem(logger.Nop(), textStyle, "s", time.Now())
	d2, ok2 := normalizeItem(logger.Nop(), attrStyle, "s", time.Now())
	if !ok1 || !ok2 {
		t.Fatal("both representations should normalize")
	}
	if d1.URL != d2.URL {
		t.Errorf("text-style url %q != attr-style url %q", d1.URL, d2.URL)
	}
}

func TestNormalizeItem_SkipsNonAlternateLinks(t *testing.T) {
	item := parseItem(t, `<feed><entry>
		<title>A</title>
		<link rel="self" href="https://example.com/feed.xml"/>
		<link rel="alternate" href="https://example.com/post"/>
	</entry></feed>`)
	draft, ok := normalizeItem(logger.Nop(), item, "s", time.Now())
	if !ok {
		t.Fatal("normalizeItem() returned no draft")
	}
	if draft.URL != "https://example.com/post" {
		t.Errorf("URL = %q, want the alternate link", draft.URL)
	}
}

func TestNormalizeItem_ContentCandidateOrder(t *testing.T) {
	tests := []struct {
		name string
		feed string
		want string
	}{
		{
			"description wins",
			`<rss><channel><item><title>T</title><link>u</link><description>d</description><content:encoded xmlns:content="c">e</content:encoded></item></channel></rss>`,
			"d",
		},
		{
			"atom content",
			`<feed><entry><title>T</title><link href="u"/><content>c</content></entry></feed>`,
			"c",
		},
		{
			"encoded fallback",
			`<rss><channel><item><title>T</title><link>u</link><content:encoded xmlns:content="c">e</content:encoded></item></channel></rss>`,
			"e",
		},
		{
			"absent content is empty",
			`<rss><channel><item><title>T</title><link>u</link></item></channel></rss>`,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := parseItem(t, tt.feed)
			draft, ok := normalizeItem(logger.Nop(), item, "s", time.Now())
			if !ok {
				t.Fatal("normalizeItem() returned no draft")
			}
			if draft.Content != tt.want {
				t.Errorf("Content = %q, want %q", draft.Content, tt.want)
			}
		})
	}
}

func TestNormalizeItem_DateFallback(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		feed string
		want time.Time
	}{
		{
			"unparsable date uses ingestion time",
			`<rss><channel><item><title>T</title><link>u</link><pubDate>not a date</pubDate></item></channel></rss>`,
			now,
		},
		{
			"absent date uses ingestion time",
			`<rss><channel><item><title>T</title><link>u</link></item></channel></rss>`,
			now,
		},
		{
			"atom published",
			`<feed><entry><title>T</title><link href="u"/><published>2006-01-02T15:04:05Z</published></entry></feed>`,
			time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC),
		},
		{
			"dublin core date",
			`<rdf:RDF xmlns:rdf="r"><item><title>T</title><link>u</link><dc:date xmlns:dc="d">2006-01-02T15:04:05Z</dc:date></item></rdf:RDF>`,
			time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := parseItem(t, tt.feed)
			draft, ok := normalizeItem(logger.Nop(), item, "s", now)
			if !ok {
				t.Fatal("normalizeItem() returned no draft")
			}
			if !draft.PublishedAt.Equal(tt.want) {
				t.Errorf("PublishedAt = %v, want %v", draft.PublishedAt, tt.want)
			}
			if draft.PublishedAt.IsZero() {
				t.Error("PublishedAt must never be zero")
			}
		})
	}
}
