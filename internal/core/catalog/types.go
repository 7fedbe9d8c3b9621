package catalog

// TMDB 端點的回應形狀；只在本套件內使用

// genre 供應商分類法條目
type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// genreListResponse /genre/{type}/list 響應
type genreListResponse struct {
	Genres []genre `json:"genres"`
}

// discoverResult 探索結果條目（電影用 title，影集用 name）
type discoverResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Name  string `json:"name"`
}

// discoverResponse /discover/{type} 響應
type discoverResponse struct {
	Page    int              `json:"page"`
	Results []discoverResult `json:"results"`
}

// movieDetails /movie/{id} 響應（append_to_response=release_dates）
type movieDetails struct {
	Title        string  `json:"title"`
	Runtime      int     `json:"runtime"`
	Genres       []genre `json:"genres"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	ReleaseDates struct {
		Results []struct {
			ISO31661     string `json:"iso_3166_1"`
			ReleaseDates []struct {
				Certification string `json:"certification"`
			} `json:"release_dates"`
		} `json:"results"`
	} `json:"release_dates"`
}

// tvDetails /tv/{id} 響應（append_to_response=content_ratings）
type tvDetails struct {
	Name            string  `json:"name"`
	EpisodeRunTime  []int   `json:"episode_run_time"`
	Genres          []genre `json:"genres"`
	FirstAirDate    string  `json:"first_air_date"`
	NumberOfSeasons int     `json:"number_of_seasons"`
	VoteAverage     float64 `json:"vote_average"`
	VoteCount       int     `json:"vote_count"`
	ContentRatings  struct {
		Results []struct {
			ISO31661 string `json:"iso_3166_1"`
			Rating   string `json:"rating"`
		} `json:"results"`
	} `json:"content_ratings"`
	LastEpisodeToAir *struct {
		Runtime int `json:"runtime"`
	} `json:"last_episode_to_air"`
}

// personSearchResponse /search/person 響應
type personSearchResponse struct {
	Results []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"results"`
}
