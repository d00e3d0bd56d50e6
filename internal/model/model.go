package model

import "time"

// Page is one listing page to fetch.
type Page struct {
	URL    string
	Number int
	Term   string
	Year   int
}

// Item is a candidate as extracted from a listing, before normalization.
type Item struct {
	Title    string
	Summary  string
	DateText string
	Link     string
	Term     string
}

// Article is the normalized record written to storage.
type Article struct {
	Title       string
	Summary     string
	Term        string
	PublishedAt time.Time
}
