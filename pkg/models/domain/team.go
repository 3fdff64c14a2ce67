package domain

import "time"

type Team struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	HTMLURL     string
	LastFetched time.Time
}
