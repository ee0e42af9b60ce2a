package feedxml

// Items locates the item list of a parsed feed, trying the three shapes a
// source may publish in priority order: RSS 2.0 (channel/item), Atom
// (feed/entry), then RSS 1.0/RDF (item directly under the root). The
// first shape that yields items wins. An unrecognized document is not an
// error, it is simply zero items — callers treat it as an empty feed.
func Items(doc *Document) []*Node {
	if doc == nil || doc.Root == nil {
		return nil
	}
	if items := doc.Root.First("channel").All("item"); len(items) > 0 {
		return items
	}
	if entries := doc.Root.All("entry"); len(entries) > 0 {
		return entries
	}
	if items := doc.Root.All("item"); len(items) > 0 {
		return items
	}
	return nil
}
