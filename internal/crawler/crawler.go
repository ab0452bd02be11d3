// Package crawler downloads a paginated photo-gallery website into per-album
// directories, naming each image with a random filename.
package crawler

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultUserAgent mimics a desktop browser; some gallery hosts refuse the
// Go default.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// imageLink matches hrefs that point directly at an image file.
var imageLink = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp)$`)

// Config holds the crawler settings.
type Config struct {
	// BaseURL is the site root, e.g. https://www.olografix.org.
	BaseURL string

	// GalleryPath is the paginated listing under BaseURL.
	GalleryPath string

	// OutDir receives one subdirectory per album.
	OutDir string

	// MaxPages bounds the pagination; <= 0 means no bound beyond an empty
	// page.
	MaxPages int

	// Delay is the politeness pause after each download.
	Delay time.Duration

	// UserAgent overrides DefaultUserAgent when set.
	UserAgent string
}

// Crawler walks the gallery listing and downloads every discovered image.
type Crawler struct {
	cfg    Config
	base   *url.URL
	client *http.Client
}

// New validates the configuration and builds a Crawler.
func New(cfg Config) (*Crawler, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if cfg.GalleryPath == "" {
		cfg.GalleryPath = "/category/photogallery/"
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "downloads"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Crawler{
		cfg:    cfg,
		base:   base,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// albumLink is one post discovered on a listing page.
type albumLink struct {
	URL   string
	Title string
}

// Run paginates the gallery listing and crawls every album. It stops at the
// first page without album links, or at MaxPages. Per-album and per-image
// failures are logged and skipped.
func (c *Crawler) Run(ctx context.Context) error {
	if err := os.MkdirAll(c.cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for page := 1; ; page++ {
		if c.cfg.MaxPages > 0 && page > c.cfg.MaxPages {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		pageURL := c.pageURL(page)
		log.Info().Int("page", page).Str("url", pageURL).Msg("Processing listing page")

		albums, err := c.albumLinks(ctx, pageURL)
		if err != nil {
			log.Warn().Str("url", pageURL).Err(err).Msg("Could not fetch listing page")
			break
		}
		if len(albums) == 0 {
			log.Info().Int("page", page).Msg("No albums found, stopping")
			break
		}

		for _, album := range albums {
			if err := c.crawlAlbum(ctx, album); err != nil {
				log.Warn().Str("album", album.Title).Err(err).Msg("Album crawl failed")
			}
		}
	}
	return nil
}

// pageURL builds the listing URL for a page number; page 1 is the listing
// itself, later pages live under page/N/.
func (c *Crawler) pageURL(page int) string {
	base := strings.TrimSuffix(c.cfg.BaseURL, "/") + c.cfg.GalleryPath
	if page == 1 {
		return base
	}
	return fmt.Sprintf("%spage/%d/", base, page)
}

// albumLinks extracts the post links from a listing page.
func (c *Crawler) albumLinks(ctx context.Context, pageURL string) ([]albumLink, error) {
	doc, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var albums []albumLink
	doc.Find("h3.post-title a").Each(func(_ int, sel *goquery.Selection) {
		href, hasHref := sel.Attr("href")
		title, hasTitle := sel.Attr("title")
		if hasHref && hasTitle {
			albums = append(albums, albumLink{URL: href, Title: title})
		}
	})
	return albums, nil
}

// crawlAlbum downloads every image linked from an album page into a
// slugified per-album directory.
func (c *Crawler) crawlAlbum(ctx context.Context, album albumLink) error {
	log.Info().Str("album", album.Title).Msg("Processing album")

	pageURL, err := c.base.Parse(album.URL)
	if err != nil {
		return fmt.Errorf("parsing album URL %q: %w", album.URL, err)
	}

	doc, err := c.fetchDocument(ctx, pageURL.String())
	if err != nil {
		return err
	}

	albumDir := filepath.Join(c.cfg.OutDir, Slugify(album.Title))
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		return fmt.Errorf("creating album directory: %w", err)
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !imageLink.MatchString(href) {
			return
		}
		// Thumbnail/cache renditions are not originals.
		if strings.Contains(href, "cache") {
			return
		}
		imgURL, err := pageURL.Parse(href)
		if err != nil {
			log.Warn().Str("href", href).Err(err).Msg("Skipping unparsable image link")
			return
		}
		if err := c.download(ctx, imgURL, albumDir); err != nil {
			log.Warn().Str("url", imgURL.String()).Err(err).Msg("Download failed")
		}
		if c.cfg.Delay > 0 {
			time.Sleep(c.cfg.Delay)
		}
	})
	return nil
}

// download streams one image to a randomly named file in albumDir.
func (c *Crawler) download(ctx context.Context, imgURL *url.URL, albumDir string) error {
	resp, err := c.get(ctx, imgURL.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	name := RandomName(path.Base(imgURL.Path))
	dst := filepath.Join(albumDir, name)

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}

	log.Info().Str("url", imgURL.String()).Str("file", name).Int64("bytes", n).Msg("Downloaded image")
	return nil
}

// get issues a GET with the configured User-Agent and rejects non-2xx
// responses.
func (c *Crawler) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}
	return resp, nil
}

// fetchDocument GETs a page and parses it with goquery.
func (c *Crawler) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return doc, nil
}

// RandomName returns a random hex filename preserving the original file's
// extension, lowercased.
func RandomName(original string) string {
	id := uuid.New()
	return hex.EncodeToString(id[:]) + strings.ToLower(filepath.Ext(original))
}
