// Package importer seeds the library from podcast RSS feeds. Each feed
// episode with an audio enclosure becomes a voizy pointing at the remote
// enclosure URL.
package importer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"github.com/voizylabs/voizy/internal/debuglog"
	"github.com/voizylabs/voizy/internal/library"
	"github.com/voizylabs/voizy/internal/validation"
)

type Importer struct {
	parser    *gofeed.Parser
	client    *http.Client
	userAgent string
}

type Option func(*Importer)

func WithHTTPClient(client *http.Client) Option {
	return func(i *Importer) { i.client = client }
}

func WithUserAgent(agent string) Option {
	return func(i *Importer) { i.userAgent = agent }
}

func New(opts ...Option) *Importer {
	i := &Importer{
		parser:    gofeed.NewParser(),
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: "voizy/1.0",
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportFeed fetches a feed and saves every audio episode into the
// collection. Episodes already present keep their stored record.
func (i *Importer) ImportFeed(ctx context.Context, feedURL string, collection library.Collection) (int, error) {
	if err := validation.ValidateFeedURL(feedURL); err != nil {
		return 0, err
	}

	items, err := i.FetchFeed(ctx, feedURL)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, item := range items {
		if _, err := collection.GetItem(item.ID); err == nil {
			continue
		}
		if err := collection.SaveItem(item); err != nil {
			debuglog.Warnf("importing %q: %v", item.Name, err)
			continue
		}
		imported++
	}

	debuglog.Infof("imported %d/%d items from %s", imported, len(items), feedURL)
	return imported, nil
}

// FetchFeed downloads and parses a feed without touching storage.
func (i *Importer) FetchFeed(ctx context.Context, feedURL string) ([]*library.Voizy, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed: unexpected status %d", resp.StatusCode)
	}

	return i.ParseFeed(resp.Body, feedURL)
}

// ParseFeed converts feed XML into voizys. Episodes without an audio
// enclosure are skipped.
func (i *Importer) ParseFeed(reader io.Reader, feedURL string) ([]*library.Voizy, error) {
	feed, err := i.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	feedID := generateFeedID(feedURL)
	feedTags := feedTags(feed)

	items := make([]*library.Voizy, 0, len(feed.Items))
	for _, entry := range feed.Items {
		enclosure := audioEnclosure(entry)
		if enclosure == nil {
			continue
		}

		voizy := &library.Voizy{
			ID:          generateItemID(feedID, entry),
			Name:        strings.TrimSpace(entry.Title),
			Tags:        feedTags,
			PlaybackURL: enclosure.URL,
			CreatedAt:   time.Now(),
		}
		if entry.PublishedParsed != nil {
			voizy.CreatedAt = *entry.PublishedParsed
		}

		items = append(items, voizy)
	}

	return items, nil
}

func feedTags(feed *gofeed.Feed) []string {
	tags := lo.Map(feed.Categories, func(c string, _ int) string {
		return strings.ToLower(strings.TrimSpace(c))
	})
	if feed.Title != "" {
		tags = append(tags, strings.ToLower(strings.TrimSpace(feed.Title)))
	}
	return lo.Uniq(lo.Filter(tags, func(t string, _ int) bool { return t != "" }))
}

func audioEnclosure(entry *gofeed.Item) *gofeed.Enclosure {
	for _, enc := range entry.Enclosures {
		if enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "audio/") || strings.HasSuffix(enc.URL, ".mp3") {
			return enc
		}
	}
	return nil
}

func generateFeedID(feedURL string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(feedURL)))[:12]
}

func generateItemID(feedID string, entry *gofeed.Item) string {
	if entry.GUID != "" {
		return fmt.Sprintf("%s:%x", feedID, sha256.Sum256([]byte(entry.GUID)))[:32]
	}
	return fmt.Sprintf("%s:%x", feedID, sha256.Sum256([]byte(entry.Title)))[:32]
}
