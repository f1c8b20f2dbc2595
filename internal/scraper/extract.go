// Package scraper extracts product listings from storefront pages and
// regenerates tenant system prompts from them.
//
// Extraction is best-effort pattern matching against markup this
// system does not control. When the page changes shape the scraper is
// expected to degrade silently (return fewer or zero products), not
// crash.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	listingPath  = "/productos"
	minNameLen   = 3
	outOfStockID = "sin stock"
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

var pricePattern = regexp.MustCompile(`\$[\d.,]+`)

// Product is one extracted catalog entry.
type Product struct {
	Name    string `json:"name"`
	Price   string `json:"price"`
	InStock bool   `json:"in_stock"`
}

// ExtractListing scans a listing page for products. Candidates are
// heading links; the price and stock phrase are read from the enclosing
// container's text. Duplicates by exact name and names shorter than
// three characters are discarded.
func ExtractListing(r io.Reader) ([]Product, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var products []Product
	seen := make(map[string]bool)

	doc.Find("h3 a").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Text())
		if len([]rune(name)) < minNameLen || seen[name] {
			return
		}

		container := sel.Closest("div").Parent()
		text := container.Text()

		products = append(products, Product{
			Name:    name,
			Price:   pricePattern.FindString(text),
			InStock: !strings.Contains(strings.ToLower(text), outOfStockID),
		})
		seen[name] = true
	})

	return products, nil
}

// Fetcher retrieves storefront listing pages.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher using client, or http.DefaultClient
// when nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// FetchListing downloads baseURL's listing page and extracts products.
func (f *Fetcher) FetchListing(ctx context.Context, baseURL string) ([]Product, error) {
	url := strings.TrimRight(baseURL, "/") + listingPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listing: unexpected status %d", resp.StatusCode)
	}

	return ExtractListing(resp.Body)
}
