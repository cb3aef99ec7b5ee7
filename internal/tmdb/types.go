package tmdb

type MovieResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
}

type PersonResult struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	KnownForDepartment string  `json:"known_for_department"`
	ProfilePath        string  `json:"profile_path"`
	Popularity         float64 `json:"popularity"`
}

type MovieSearch struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalResults int           `json:"total_results"`
}

type PersonSearch struct {
	Page         int            `json:"page"`
	Results      []PersonResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

// CastMember is an actor billed in a movie.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// MovieCredit is a movie in an actor's filmography.
type MovieCredit struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Character   string `json:"character"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
}

type MovieCredits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
}

type PersonMovieCredits struct {
	ID   int           `json:"id"`
	Cast []MovieCredit `json:"cast"`
}
