package models

import "time"

// Category groups trackers under a unique title.
type Category struct {
	Title    string    `json:"title"`
	Trackers []Tracker `json:"trackers"`
}

// CategoryRecord is a stored category.
type CategoryRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
