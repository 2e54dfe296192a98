package api

// Testament identifies which canon division a book belongs to.
type Testament string

const (
	OldTestament Testament = "OT"
	NewTestament Testament = "NT"
)

// Book mirrors one entry of /bible/books/.
type Book struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
	Testament    Testament `json:"testament"`
	ChapterCount int       `json:"chapters_count"`
}

// Chapter mirrors one entry of /bible/chapters/.
type Chapter struct {
	ID         int `json:"id"`
	Book       int `json:"book"`
	Number     int `json:"chapter_number"`
	VerseCount int `json:"verses_count"`
}

// Verse mirrors one entry of /bible/verses/.
type Verse struct {
	ID        int    `json:"id"`
	Chapter   int    `json:"chapter"`
	Number    int    `json:"verse_number"`
	Text      string `json:"text"`
	BookName  string `json:"book_name,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// page is the envelope the content API wraps every list endpoint in.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// SearchResult mirrors /bible/verses/search/.
type SearchResult struct {
	Count   int     `json:"count"`
	Query   string  `json:"query"`
	Results []Verse `json:"results"`
}

// AnswerVerse is a verse citation inside an AI answer.
type AnswerVerse struct {
	Text      string `json:"text"`
	Reference string `json:"reference"`
}

// Answer mirrors the structured response of /ai/ask/.
type Answer struct {
	ID             int           `json:"id,omitempty"`
	Question       string        `json:"question"`
	Summary        string        `json:"summary"`
	Verses         []AnswerVerse `json:"verses"`
	Explanation    string        `json:"explanation"`
	Application    string        `json:"application"`
	Prayer         string        `json:"prayer"`
	CreatedAt      string        `json:"created_at,omitempty"`
	Provider       string        `json:"ai_provider,omitempty"`
	ProcessingTime float64       `json:"processing_time,omitempty"`
}

// Conversation mirrors one entry of /ai/conversations/.
type Conversation struct {
	ID             int     `json:"id"`
	Question       string  `json:"question"`
	Response       Answer  `json:"response"`
	CreatedAt      string  `json:"created_at"`
	Provider       string  `json:"ai_provider"`
	ProcessingTime float64 `json:"processing_time"`
}

// User mirrors the account payload returned on login/register.
type User struct {
	ID         int    `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	DateJoined string `json:"date_joined"`
}

// LoginResponse mirrors /users/login/ and /users/register/.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Password  string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse mirrors /auth/token/refresh/.
type RefreshResponse struct {
	Access string `json:"access"`
}

type askRequest struct {
	Question string `json:"question"`
}
