package tmdb

// MediaType distinguishes movie and TV endpoints.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// Item is one entry of a listing page. Movies and TV shows are normalized
// to the same shape.
type Item struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate string    `json:"release_date"`
	PosterPath  string    `json:"poster_path,omitempty"` // empty when TMDb returns null
	VoteAverage float64   `json:"vote_average"`
	MediaType   MediaType `json:"media_type"`
}

// PageResult is one page of a listing.
type PageResult struct {
	Page         int    `json:"page"`
	Items        []Item `json:"items"`
	TotalResults int    `json:"total_results"`
	// TotalPages is the count reported by TMDb; callers derive their own from TotalResults.
	TotalPages int `json:"total_pages"`
}

// MovieDetails represents detailed movie information.
type MovieDetails struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Runtime     int     `json:"runtime"`
	Status      string  `json:"status"`
	Tagline     string  `json:"tagline"`
	IMDbID      string  `json:"imdb_id"`
	Genres      []Genre `json:"genres"`
}

// TVDetails represents detailed TV show information.
type TVDetails struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	FirstAirDate     string  `json:"first_air_date"`
	PosterPath       string  `json:"poster_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
	Status           string  `json:"status"`
	Tagline          string  `json:"tagline"`
	Genres           []Genre `json:"genres"`
}

// Genre represents a movie or TV genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is a single credited actor.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// Credits lists the cast of a movie or TV show.
type Credits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
}

// listResponse is the raw paginated listing response. Results is a pointer
// so a missing field can be told apart from an empty page.
type listResponse struct {
	Page         int          `json:"page"`
	Results      *[]rawResult `json:"results"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

// rawResult carries both the movie and the TV variants of each field.
type rawResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   *string `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	MediaType    string  `json:"media_type"`
}

type genresResponse struct {
	Genres []Genre `json:"genres"`
}

// apiError is the TMDb error body.
type apiError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// toItem normalizes a raw result; fallback is used when TMDb omits media_type.
func (r rawResult) toItem(fallback MediaType) Item {
	item := Item{
		ID:          r.ID,
		Title:       r.Title,
		ReleaseDate: r.ReleaseDate,
		VoteAverage: r.VoteAverage,
		MediaType:   fallback,
	}
	if item.Title == "" {
		item.Title = r.Name
	}
	if item.ReleaseDate == "" {
		item.ReleaseDate = r.FirstAirDate
	}
	if r.PosterPath != nil {
		item.PosterPath = *r.PosterPath
	}
	if r.MediaType != "" {
		item.MediaType = MediaType(r.MediaType)
	}
	return item
}
