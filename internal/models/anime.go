// Package models contains the catalog and stream data structures.
package models

import "time"

// Suggest is a single search-suggestion hit from the ajax suggest endpoint.
type Suggest struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	En   string `json:"en"`
	Pic  string `json:"pic"`
}

// SuggestsResponse is the JSON envelope of the suggest endpoint.
// A Code other than 1 means the lookup produced nothing usable.
type SuggestsResponse struct {
	Code      int       `json:"code"`
	Msg       string    `json:"msg"`
	Page      int       `json:"page"`
	PageCount int       `json:"pagecount"`
	Limit     int       `json:"limit"`
	Total     int       `json:"total"`
	List      []Suggest `json:"list"`
	URL       string    `json:"url"`
}

// AnimeShell is a lightweight catalog entry produced by every listing
// parser (search, filter, homepage). ID is always a positive integer;
// items whose ID cannot be recovered are never emitted.
type AnimeShell struct {
	ID       int
	Name     string
	ImageURL string
	Status   string
}

// Episode is one playable segment of a stream line. ID is a dense
// 1-based sequence in encounter order, not the site's nid parameter.
type Episode struct {
	ID    int
	Title string
}

// StreamLine is an independent playback source offering its own full
// episode list. IDs are unique within one Anime; the first line seen
// with a given id wins.
type StreamLine struct {
	ID       int
	Episodes []Episode
}

// Anime is the full detail record. LatestEpisode is computed from the
// episode titles (see scraper.ParseAnimeDetail), not read from the site.
type Anime struct {
	ID            int
	Name          string
	ImageURL      string
	Status        string
	LatestEpisode int
	Tags          []string
	Type          string
	Year          string
	Description   string
	StreamLines   []StreamLine
	LastUpdate    time.Time
}

// ResolvedStream is the final output of the stream resolver. URL is the
// decrypted playback URL; NextURL, when non-empty, is the validated
// playback URL of the following episode.
type ResolvedStream struct {
	URL     string
	NextURL string
}
