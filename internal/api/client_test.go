package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("default url = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("example.com/api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http inferred", u.Scheme)
	}
	if u.Path != "/api" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_BooksDrainsAllPages(t *testing.T) {
	t.Parallel()

	var gotPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		if r.URL.Path != "/api/bible/books/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		next := "page=2"
		switch r.URL.Query().Get("page") {
		case "1":
			_ = json.NewEncoder(w).Encode(page[Book]{
				Count:   3,
				Next:    &next,
				Results: []Book{{ID: 1, Name: "Genesis"}, {ID: 2, Name: "Exodus"}},
			})
		case "2":
			_ = json.NewEncoder(w).Encode(page[Book]{
				Count:   3,
				Results: []Book{{ID: 3, Name: "Leviticus"}},
			})
		default:
			http.Error(w, "bad page", http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/api")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	books, err := c.Books(testContext(t))
	if err != nil {
		t.Fatalf("Books returned error: %v", err)
	}
	if len(books) != 3 || books[0].Name != "Genesis" || books[2].Name != "Leviticus" {
		t.Fatalf("Books = %#v, want all 3 across pages", books)
	}
	if len(gotPaths) != 2 {
		t.Fatalf("requests = %v, want exactly 2 pages fetched", gotPaths)
	}
}

func TestClient_VersesEncodesFilters(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(page[Verse]{Results: []Verse{{ID: 1, Text: "text"}}})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.Verses(testContext(t), 1, 100); err != nil {
		t.Fatalf("Verses returned error: %v", err)
	}
	if gotQuery.Get("book") != "1" || gotQuery.Get("chapter") != "100" || gotQuery.Get("page") != "1" {
		t.Fatalf("query = %v, want book=1 chapter=100 page=1", gotQuery)
	}
}

func TestClient_SearchSendsQuery(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bible/verses/search/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResult{
			Count:   1,
			Query:   r.URL.Query().Get("q"),
			Results: []Verse{{ID: 7, Text: "For God so loved the world"}},
		})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	res, err := c.Search(testContext(t), "love")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if res.Query != "love" || len(res.Results) != 1 {
		t.Fatalf("Search = %#v, want the echoed query with 1 result", res)
	}
}

func TestClient_UnauthorizedIsSentinel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.Books(testContext(t))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(page[Book]{})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.SetTokenSource(func() string { return "token-123" })

	if _, err := c.Books(testContext(t)); err != nil {
		t.Fatalf("Books returned error: %v", err)
	}
	if gotAuth != "Bearer token-123" {
		t.Fatalf("Authorization = %q, want Bearer token-123", gotAuth)
	}
}

func TestClient_AskPostsQuestion(t *testing.T) {
	t.Parallel()

	var gotBody askRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ai/ask/" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Answer{
			Question: gotBody.Question,
			Summary:  "a summary",
			Verses:   []AnswerVerse{{Text: "verse", Reference: "John 3:16"}},
		})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	answer, err := c.Ask(testContext(t), "what is love?")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if gotBody.Question != "what is love?" {
		t.Fatalf("posted question = %q", gotBody.Question)
	}
	if answer.Summary != "a summary" || len(answer.Verses) != 1 {
		t.Fatalf("Ask = %#v", answer)
	}
}

func TestClient_LoginDecodesTokenPair(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/login/" {
			http.NotFound(w, r)
			return
		}
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "a@b.c" || req.Password != "hunter22" {
			http.Error(w, "bad credentials", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(LoginResponse{
			Access:  "acc",
			Refresh: "ref",
			User:    User{ID: 1, Email: req.Email, FirstName: "Ada"},
		})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	resp, err := c.Login(testContext(t), "a@b.c", "hunter22")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.Access != "acc" || resp.Refresh != "ref" || resp.User.FirstName != "Ada" {
		t.Fatalf("Login = %#v", resp)
	}
}

func TestClient_RandomVerseEmptyCanon(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(page[Verse]{})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	verse, err := c.RandomVerse(testContext(t))
	if err != nil {
		t.Fatalf("RandomVerse returned error: %v", err)
	}
	if verse != nil {
		t.Fatalf("RandomVerse = %#v, want nil for empty canon", verse)
	}
}
