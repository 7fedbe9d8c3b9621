package agent

import (
	"fmt"
	"strings"

	"movie-recommender/internal/pkg/common"
)

// 各階段的 prompt 模板
// 分類法字串必須與供應商完全一致，電影與影集的合法清單不同

// MovieGenres 電影分類法的合法 genre 字串
var MovieGenres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime", "Documentary",
	"Drama", "Family", "Fantasy", "History", "Horror", "Music", "Mystery",
	"Romance", "Science Fiction", "TV Movie", "Thriller", "War", "Western",
}

// ShowGenres 影集分類法的合法 genre 字串
var ShowGenres = []string{
	"Action & Adventure", "Animation", "Comedy", "Crime", "Documentary",
	"Drama", "Family", "Kids", "Mystery", "News", "Reality",
	"Sci-Fi & Fantasy", "Soap", "Talk", "War & Politics", "Western",
}

// 常見俗稱 → 分類法字串（依內容類型）
var movieGenreAliases = map[string]string{
	"sci-fi":  "Science Fiction",
	"scifi":   "Science Fiction",
	"sci fi":  "Science Fiction",
	"romcom":  "Romance",
	"doc":     "Documentary",
	"cartoon": "Animation",
}

var showGenreAliases = map[string]string{
	"sci-fi":          "Sci-Fi & Fantasy",
	"scifi":           "Sci-Fi & Fantasy",
	"sci fi":          "Sci-Fi & Fantasy",
	"science fiction": "Sci-Fi & Fantasy",
	"fantasy":         "Sci-Fi & Fantasy",
	"action":          "Action & Adventure",
	"adventure":       "Action & Adventure",
	"war":             "War & Politics",
	"cartoon":         "Animation",
}

// 推理失敗時的固定回覆
const (
	fallbackGreetingReply = "Hello! What movie or TV series would you like to talk about?"

	fallbackOutOfScopeReply = "I wish I could help, but my expertise is limited to movies and TV shows."
)

// classificationPrompt 意圖分類
func classificationPrompt(message string) string {
	return fmt.Sprintf(`Classify the user input into exactly ONE of these categories:

1. "greeting" - User is greeting, saying hello, or making general conversation (e.g., "hi", "hello", "how are you")
2. "recommendation" - User is asking for movie/TV show recommendations or expressing preferences (e.g., "I want action movies", "recommend something funny", "what should I watch")
3. "out_of_scope" - User is asking about anything else not related to movies/TV or greetings (e.g., "what's the weather", "help me with math", "tell me a joke")

Respond with only a JSON object: {"intent": "<category>"}

User input: %q`, message)
}

// greetingPrompt 招呼回覆
func greetingPrompt(message string) string {
	return fmt.Sprintf(`You are a friendly greeting agent for a movie and TV show recommendation service. Respond to the user's greeting in a warm and engaging manner, and encourage them to ask for a recommendation.

Do not provide recommendations or engage in topics unrelated to greetings. Respond with plain text only, one or two sentences.

User input: %q`, message)
}

// outOfScopePrompt 超出範圍回覆
func outOfScopePrompt(message string) string {
	return fmt.Sprintf(`The user asked about something outside the scope of a movie and TV show recommendation service. Respond with a short, polite message indicating that you can only help with movie and TV show recommendations. Do not answer the user's question. Respond with plain text only.

User input: %q`, message)
}

// extractorPrompt 偏好解析
func extractorPrompt(message string) string {
	return fmt.Sprintf(`Parse the user's movie/TV request and extract their preferences as one or more structured queries.

**Valid genres (use ONLY these exact strings):**
Movies: %s
TV Shows: %s

**Fields per query:**
- typePreference: "movie", "show", or "any" (default "any")
- genresInclude: array of genre names from the valid list for the chosen type. You MUST map the user's requested genre to the EXACT valid string for that type (e.g. "sci-fi" -> "Science Fiction" for movies, "Sci-Fi & Fantasy" for shows).
- timeLimitMinutes: maximum runtime in minutes or null ("under 2 hours" -> 120, "short" -> 30)
- year: exact year if specified; minYear/maxYear: decade or era ranges ("80s movies" -> 1980..1989)
- minRating: 0-10 ("good movies" -> 7, "masterpieces" -> 8.5, "trash" -> null)
- language: ISO-639-1 code ("French" -> "fr", "Korean" -> "ko")
- actors / directors: arrays of people names, passed through as written
- sortBy: "popularity" (default; "popular", "trending"), "newest" ("new", "recent", "latest"), or "top_rated" ("best", "top rated", "highly acclaimed")

**OR logic:** when the user wants DIFFERENT type+genre combinations joined by OR (e.g. "action movie or comedy show"), emit one query per combination. A plain multi-genre request without an explicit type split is ONE query with multiple genres.

If no discernible preference exists, emit a single query {"typePreference": "any", "genresInclude": []}.

Respond with only a JSON object: {"queries": [ ... ]}

User request: %q`,
		strings.Join(MovieGenres, ", "),
		strings.Join(ShowGenres, ", "),
		message)
}

// rankerPrompt 排序與說明
func rankerPrompt(userQuery string, items []common.CatalogItem, target int) string {
	return fmt.Sprintf(`Rank the catalog results below for the user's request and explain each recommendation.

**CRITICAL: ONLY use items from the catalog results provided. NEVER invent titles.**

**Ranking strategy:**
1. Quality first: prioritize items with high rating (> 7.0) and significant vote counts.
2. Recency: between two similarly rated items, prefer the newer one.
3. Relevance: favor items matching the user's specific request.
4. Variety: avoid filling the list with sequels from the same franchise if other valid options exist.

Return exactly %d recommendations. Each explanation is 1-2 sentences and must mention at least one concrete attribute (the rating, a matching genre, or the runtime).

Respond with only a JSON object:
{"recommendations": [{"name": "Title", "type": "movie|show", "year": 2020, "rank": 1, "explanation": "Why recommended"}]}

User request: %q

Catalog results:
%s`, target, userQuery, common.FormatCatalogItems(items))
}
