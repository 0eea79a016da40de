// Package web captures web pages as clips: it fetches a URL, extracts the
// readable article text and collects title, site, author and date metadata.
package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
	"github.com/custodia-labs/sheaf/internal/logger"
)

// Ensure Clipper implements the interface.
var _ driven.WebClipper = (*Clipper)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 20 * time.Second
	DefaultRequestsPerSecond = 1.0
	DefaultUserAgent         = "sheaf/1.0 (+https://github.com/custodia-labs/sheaf)"
	DefaultMaxBodyBytes      = 5 << 20
)

// Config holds configuration for the web clipper.
type Config struct {
	// Timeout bounds one fetch (default: 20s).
	Timeout time.Duration

	// RequestsPerSecond throttles fetches (default: 1). Negative disables throttling.
	RequestsPerSecond float64

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodyBytes caps how much of a response is read (default: 5 MiB).
	MaxBodyBytes int64
}

// Clipper fetches pages and turns them into web clips.
type Clipper struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxBody   int64
}

// NewClipper creates a clipper.
func NewClipper(cfg Config) *Clipper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Clipper{
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
	}
}

// Clip fetches rawURL and extracts its readable content.
func (c *Clipper) Clip(ctx context.Context, rawURL string) (*domain.WebClip, error) {
	pageURL, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	body, contentType, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if !isHTML(contentType) {
		text := strings.TrimSpace(string(body))
		if text == "" {
			return nil, fmt.Errorf("%s: no readable content", pageURL)
		}
		return &domain.WebClip{
			Title:    lastPathSegment(pageURL),
			Content:  text,
			URL:      pageURL.String(),
			SiteName: pageURL.Hostname(),
		}, nil
	}

	clip, err := extract(body, pageURL)
	if err != nil {
		return nil, err
	}
	logger.Debug("Clipped %s: %q (%d chars)", clip.URL, clip.Title, len(clip.Content))
	return clip, nil
}

func (c *Clipper) fetch(ctx context.Context, pageURL *url.URL) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, "", fmt.Errorf("fetch %s: %w", pageURL, domain.ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, "", fmt.Errorf("fetch %s: %w (status %d)", pageURL, domain.ErrNotFound, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, "", fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// extract runs readability for the article body and goquery for page metadata.
// Readability values win; <meta> tags and <title> fill the gaps.
func extract(body []byte, pageURL *url.URL) (*domain.WebClip, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	meta := readMeta(doc)

	clip := &domain.WebClip{URL: pageURL.String()}

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(body), pageURL)
	if err == nil {
		clip.Title = clean(article.Title)
		clip.Author = clean(article.Byline)
		clip.SiteName = clean(article.SiteName)
		if article.PublishedTime != nil {
			clip.Date = article.PublishedTime.Format("2006-01-02")
		}
		clip.Content = htmlToText(article.Content)
	} else {
		logger.Debug("Readability failed for %s: %v", pageURL, err)
	}

	if clip.Content == "" {
		doc.Find("script, style, noscript, nav, header, footer").Remove()
		clip.Content = blocksText(doc.Find("body"))
	}
	if clip.Content == "" {
		return nil, fmt.Errorf("%s: no readable content", pageURL)
	}

	clip.Title = firstNonEmpty(clip.Title, meta.title, meta.documentTitle)
	clip.Author = firstNonEmpty(clip.Author, meta.author)
	clip.SiteName = firstNonEmpty(clip.SiteName, meta.siteName, pageURL.Hostname())
	clip.Date = firstNonEmpty(clip.Date, meta.published)

	return clip, nil
}

type pageMeta struct {
	title         string
	documentTitle string
	siteName      string
	author        string
	published     string
}

func readMeta(doc *goquery.Document) pageMeta {
	content := func(selector string) string {
		v, _ := doc.Find(selector).First().Attr("content")
		return clean(v)
	}

	published := firstNonEmpty(
		content(`meta[property="article:published_time"]`),
		content(`meta[name="date"]`),
		content(`meta[itemprop="datePublished"]`),
	)
	if len(published) > 10 {
		if _, err := time.Parse("2006-01-02", published[:10]); err == nil {
			published = published[:10]
		}
	}

	return pageMeta{
		title:         content(`meta[property="og:title"]`),
		documentTitle: clean(doc.Find("title").First().Text()),
		siteName:      content(`meta[property="og:site_name"]`),
		author:        firstNonEmpty(content(`meta[name="author"]`), content(`meta[property="article:author"]`)),
		published:     published,
	}
}

// htmlToText flattens readability's cleaned HTML into paragraphs.
func htmlToText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return blocksText(doc.Selection)
}

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td"

func blocksText(sel *goquery.Selection) string {
	var blocks []string
	sel.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are emitted by their innermost element.
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		text := s.Text()
		if goquery.NodeName(s) != "pre" {
			text = clean(text)
		} else {
			text = strings.TrimSpace(text)
		}
		if text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) == 0 {
		return clean(sel.Text())
	}
	return strings.Join(blocks, "\n\n")
}

func parseURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, domain.NewValidationError("url", "url is required")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, domain.NewValidationError("url", err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.NewValidationError("url", "unsupported scheme "+u.Scheme)
	}
	if u.Host == "" {
		return nil, domain.NewValidationError("url", "url has no host")
	}
	return u, nil
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func lastPathSegment(u *url.URL) string {
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return u.Hostname()
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
