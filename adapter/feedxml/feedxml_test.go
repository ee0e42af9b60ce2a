package feedxml

import "testing"

const rss2XML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Example News</title>
    <item>
      <title>Plain title</title>
      <link>https://example.com/a</link>
      <description><![CDATA[<p>CDATA body</p>]]></description>
      <content:encoded><![CDATA[<p>Full body</p>]]></content:encoded>
      <pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
    </item>
    <item>
      <title>Second</title>
      <link>https://example.com/b</link>
    </item>
  </channel>
</rss>`

const atomXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <title type="text">Entry One</title>
    <link rel="alternate" href="https://example.com/1"/>
    <content type="html">body</content>
    <published>2006-01-02T15:04:05Z</published>
  </entry>
</feed>`

const rdfXML = `<?xml version="1.0" encoding="UTF-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns="http://purl.org/rss/1.0/"
         xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel rdf:about="https://example.org/">
    <title>Example RDF</title>
  </channel>
  <item rdf:about="https://example.org/x">
    <title>RDF Item</title>
    <link>https://example.org/x</link>
    <dc:date>2006-01-02T15:04:05Z</dc:date>
  </item>
  <item rdf:about="https://example.org/y">
    <title>RDF Item Two</title>
    <link>https://example.org/y</link>
  </item>
</rdf:RDF>`

func TestParse_RejectsEmptyInput(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatal("Parse(nil) expected error")
	}
	if _, err := Parse([]byte("   ")); err == nil {
		t.Fatal("Parse(whitespace) expected error")
	}
}

func TestField_UnwrapsCDATA(t *testing.T) {
	doc, err := Parse([]byte(rss2XML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	items := Items(doc)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if got := items[0].Field("description"); got != "<p>CDATA body</p>" {
		t.Errorf("description = %q, want CDATA content", got)
	}
}

func TestField_NamespacedNames(t *testing.T) {
	doc, err := Parse([]byte(rss2XML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	item := Items(doc)[0]
	// content:encoded is addressed by its local name.
	if got := item.Field("encoded"); got != "<p>Full body</p>" {
		t.Errorf("encoded = %q, want full body", got)
	}
}

func TestField_CandidateOrder(t *testing.T) {
	doc, err := Parse([]byte(rss2XML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	item := Items(doc)[0]
	if got := item.Field("description", "encoded"); got != "<p>CDATA body</p>" {
		t.Errorf("Field(description, encoded) = %q, want the first candidate", got)
	}
	// First candidate absent: next one wins.
	if got := item.Field("summary", "encoded"); got != "<p>Full body</p>" {
		t.Errorf("Field(summary, encoded) = %q, want the second candidate", got)
	}
}

func TestField_MissingIsEmptyNotError(t *testing.T) {
	doc, err := Parse([]byte(rss2XML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	item := Items(doc)[1]
	if got := item.Field("description"); got != "" {
		t.Errorf("missing description = %q, want empty", got)
	}
	if got := item.Field("no", "such", "fields"); got != "" {
		t.Errorf("missing candidates = %q, want empty", got)
	}
	var nilNode *Node
	if got := nilNode.Field("title"); got != "" {
		t.Errorf("nil node Field = %q, want empty", got)
	}
}

func TestAttr(t *testing.T) {
	doc, err := Parse([]byte(atomXML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	link := Items(doc)[0].First("link")
	if link == nil {
		t.Fatal("entry has no link element")
	}
	if got := link.Attr("href"); got != "https://example.com/1" {
		t.Errorf("href = %q", got)
	}
	if got := link.Attr("missing"); got != "" {
		t.Errorf("missing attr = %q, want empty", got)
	}
}

func TestItems_RSS2(t *testing.T) {
	doc, err := Parse([]byte(rss2XML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	items := Items(doc)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if got := items[0].Field("title"); got != "Plain title" {
		t.Errorf("title = %q", got)
	}
}

func TestItems_Atom(t *testing.T) {
	doc, err := Parse([]byte(atomXML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	items := Items(doc)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if got := items[0].Field("title"); got != "Entry One" {
		t.Errorf("title = %q", got)
	}
}

func TestItems_RDF(t *testing.T) {
	doc, err := Parse([]byte(rdfXML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	items := Items(doc)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if got := items[0].Field("date"); got != "2006-01-02T15:04:05Z" {
		t.Errorf("dc:date = %q", got)
	}
}

func TestItems_SingleBareItem(t *testing.T) {
	doc, err := Parse([]byte(`<rss><channel><item><title>Only</title></item></channel></rss>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	items := Items(doc)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
}

func TestItems_UnrecognizedShape(t *testing.T) {
	doc, err := Parse([]byte(`<html><body><p>not a feed</p></body></html>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if items := Items(doc); len(items) != 0 {
		t.Fatalf("len(items) = %d, want 0 for unrecognized shape", len(items))
	}
	if items := Items(nil); items != nil {
		t.Fatalf("Items(nil) = %v, want nil", items)
	}
}

func TestParse_ToleratesTruncatedInput(t *testing.T) {
	// Truncated document: the parsed prefix is still usable.
	doc, err := Parse([]byte(`<rss><channel><item><title>ok</title></item>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if items := Items(doc); len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1 from truncated feed", len(items))
	}
}
