package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"studyplanner-backend/internal/models"
)

const maxSearchResults = 5

// SearchProvider looks up public syllabus material. Implementations swallow
// their own failures and return an empty list.
type SearchProvider interface {
	Search(ctx context.Context, subject, examType string) []models.SearchResult
}

// StaticSearchProvider returns canned pointers to official material.
type StaticSearchProvider struct{}

func (StaticSearchProvider) Search(_ context.Context, subject, examType string) []models.SearchResult {
	return []models.SearchResult{
		{Title: fmt.Sprintf("%s %s Syllabus - Official", examType, subject), Link: "#"},
		{Title: fmt.Sprintf("%s %s Previous Year Papers", examType, subject), Link: "#"},
		{Title: fmt.Sprintf("%s %s Study Materials", examType, subject), Link: "#"},
	}
}

type NoopSearchProvider struct{}

func (NoopSearchProvider) Search(context.Context, string, string) []models.SearchResult {
	return []models.SearchResult{}
}

// ScrapeSearchProvider queries an HTML search page and reads result titles
// from <h3> elements whose parent carries the link.
type ScrapeSearchProvider struct {
	baseURL   string
	host      string
	client    *http.Client
	userAgent string
}

func NewScrapeSearchProvider(baseURL string, timeout time.Duration) *ScrapeSearchProvider {
	host := ""
	if u, err := url.Parse(baseURL); err == nil {
		host = u.Hostname()
	}
	return &ScrapeSearchProvider{
		baseURL:   baseURL,
		host:      host,
		client:    &http.Client{Timeout: timeout},
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	}
}

func (p *ScrapeSearchProvider) Search(ctx context.Context, subject, examType string) []models.SearchResult {
	results, err := p.search(ctx, subject, examType)
	if err != nil {
		log.Printf("Online search failed: %v", err)
		return []models.SearchResult{}
	}
	return results
}

func (p *ScrapeSearchProvider) search(ctx context.Context, subject, examType string) ([]models.SearchResult, error) {
	query := strings.TrimSpace(fmt.Sprintf("%s syllabus %s exam weightage topics", subject, examType))

	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	results := make([]models.SearchResult, 0, maxSearchResults)
	doc.Find("h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		link, ok := sel.Parent().Attr("href")
		if title == "" || !ok || link == "" {
			return true
		}
		if p.host != "" && strings.Contains(link, p.host) {
			return true
		}
		results = append(results, models.SearchResult{Title: title, Link: link})
		return len(results) < maxSearchResults
	})

	return results, nil
}
