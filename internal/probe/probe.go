// Package probe validates a feed URL at registration time. It uses a
// lenient off-the-shelf parser: registration only needs to know "is this
// a feed at all", while the ingest pipeline keeps its own tolerant parser.
package probe

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Check fetches and parses the feed and returns its title, which callers
// may use as a default display name.
func Check(ctx context.Context, feedURL string) (string, error) {
	u, err := url.ParseRequestURI(feedURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	feed, err := gofeed.NewParser().ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", feedURL, err)
	}
	return strings.TrimSpace(feed.Title), nil
}
