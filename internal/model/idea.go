package model

import "time"

// DefaultCategory is applied when an idea is saved without a category.
const DefaultCategory = "Other"

// Idea is a saved content idea. Ideas are immutable once created; the only
// way to change one is to delete it.
type Idea struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      string    `json:"userId"`
}

// Schedule is a publishing-calendar entry. Date is kept as the caller sent
// it and is not parsed as a calendar date.
type Schedule struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Task      string    `json:"task"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"`
}

// Stats is the aggregate shown on the admin dashboard.
type Stats struct {
	TotalUsers     int `json:"totalUsers"`
	TotalIdeas     int `json:"totalIdeas"`
	TotalSchedules int `json:"totalSchedules"`
}
