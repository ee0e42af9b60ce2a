package app

import (
	"strings"
	"time"

	"newshub/adapter/feedxml"
	"newshub/domain"
	"newshub/internal/logger"
)

// timeLayouts are tried in order against pubDate/published/dc:date values.
// Feeds mix RFC 822 variants (RSS), RFC 3339 (Atom, Dublin Core) and the
// occasional bare date.
var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseFeedTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeItem maps one raw feed item to a draft. The second return is
// false when the item lacks a usable title or link; that is a skip, not an
// error, and the caller only tallies it.
func normalizeItem(log *logger.Logger, item *feedxml.Node, sourceID string, now time.Time) (domain.ArticleDraft, bool) {
	title := item.Field("title")

	link := item.Field("link")
	if link == "" {
		// Atom encodes the link as <link href="..."/> with no text.
		for _, l := range item.All("link") {
			if rel := l.Attr("rel"); rel != "" && rel != "alternate" {
				continue
			}
			if v := strings.TrimSpace(l.Attr("href")); v != "" {
				link = v
				break
			}
		}
	}

	if title == "" || link == "" {
		log.Debug("dropping item without title or link", "title", title, "link", link)
		return domain.ArticleDraft{}, false
	}

	published := now
	if raw := item.Field("pubdate", "published", "date"); raw != "" {
		if t, ok := parseFeedTime(raw); ok {
			published = t
		} else {
			log.Debug("unparsable item date, using ingestion time", "date", raw, "link", link)
		}
	}

	return domain.ArticleDraft{
		Title:       title,
		URL:         link,
		Content:     item.Field("description", "content", "encoded"),
		PublishedAt: published,
		SourceID:    sourceID,
		Verified:    true,
	}, true
}
