package api

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
)

// Books retrieves every book of the canon, draining all pages.
func (c *Client) Books(ctx context.Context) ([]Book, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return fetchAllPages[Book](ctx, c, "/bible/books/", nil)
}

// Chapters retrieves the chapters of one book, draining all pages.
func (c *Client) Chapters(ctx context.Context, bookID int) ([]Chapter, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	query := url.Values{}
	query.Set("book", strconv.Itoa(bookID))
	return fetchAllPages[Chapter](ctx, c, "/bible/chapters/", query)
}

// Verses retrieves verses filtered by book and/or chapter, draining all pages.
// A zero id leaves that filter unset.
func (c *Client) Verses(ctx context.Context, bookID, chapterID int) ([]Verse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	query := url.Values{}
	if bookID > 0 {
		query.Set("book", strconv.Itoa(bookID))
	}
	if chapterID > 0 {
		query.Set("chapter", strconv.Itoa(chapterID))
	}
	return fetchAllPages[Verse](ctx, c, "/bible/verses/", query)
}

// Search runs a keyword search over verses.
func (c *Client) Search(ctx context.Context, query string) (SearchResult, error) {
	if c == nil {
		return SearchResult{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("q", query)
	rel := &url.URL{Path: "/bible/verses/search/", RawQuery: values.Encode()}
	var result SearchResult
	if err := c.get(ctx, rel, &result); err != nil {
		return SearchResult{}, err
	}
	return result, nil
}

// RandomVerse fetches the first page of verses and picks one at random.
// Returns nil when the API has no verses.
func (c *Client) RandomVerse(ctx context.Context) (*Verse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var p page[Verse]
	if err := c.get(ctx, &url.URL{Path: "/bible/verses/"}, &p); err != nil {
		return nil, err
	}
	if len(p.Results) == 0 {
		return nil, nil
	}
	verse := p.Results[rand.Intn(len(p.Results))]
	return &verse, nil
}
