package models

import (
	"time"
)

// DateLayout is the calendar-date format used for log entry dates.
const DateLayout = "2006-01-02"

const (
	// DefaultGoal is the yearly goal used when a user has not set one.
	DefaultGoal = 30
	MinGoal     = 1
	MaxGoal     = 200

	// MaxDailyHours bounds the sum of hours logged for a single calendar day.
	MaxDailyHours = 24.0
)

type Category string

const (
	CategoryPriority      Category = "Priority"
	CategorySupplementary Category = "Supplementary"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryPriority || c == CategorySupplementary
}

type Account struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FirstName    string `json:"first_name,omitempty" db:"first_name"`
	LastName     string `json:"last_name,omitempty" db:"last_name"`
	Verified     bool   `json:"verified" db:"verified"`
	Created      int64  `json:"created" db:"created"`
}

type Profile struct {
	ID                 string  `json:"id" db:"id"`
	Email              string  `json:"email" db:"email"`
	FirstName          *string `json:"first_name" db:"first_name"`
	LastName           *string `json:"last_name" db:"last_name"`
	PEONumber          *string `json:"peo_number" db:"peo_number"`
	EmailNotifications bool    `json:"email_notifications" db:"email_notifications"`
	CPDGoal            int     `json:"cpd_goal" db:"cpd_goal"`
	Created            int64   `json:"created" db:"created"`
	Updated            int64   `json:"updated" db:"updated"`
}

// Attachment references a proof document kept in the blob store.
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type LogEntry struct {
	ID          string      `json:"id" db:"id"`
	UserID      string      `json:"user_id" db:"user_id"`
	Date        string      `json:"date" db:"date"`
	Description string      `json:"description" db:"description"`
	Hours       float64     `json:"hours" db:"hours"`
	Category    Category    `json:"category" db:"category"`
	Attachment  *Attachment `json:"attachment,omitempty"`
	Created     int64       `json:"created" db:"created"`
	Updated     int64       `json:"updated" db:"updated"`
}

// Year returns the calendar year of the entry date, or 0 when the date is malformed.
func (e LogEntry) Year() int {
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return 0
	}
	return t.Year()
}

type YearlyGoal struct {
	ID      int64  `json:"id" db:"id"`
	UserID  string `json:"user_id" db:"user_id"`
	Year    int    `json:"year" db:"year"`
	Goal    int    `json:"goal" db:"goal"`
	Created int64  `json:"created" db:"created"`
	Updated int64  `json:"updated" db:"updated"`
}

// LogFilter narrows a log listing. Zero values mean "no filter".
type LogFilter struct {
	Year     int
	Category Category
	Limit    int
	Offset   int
}

// LogStats are all-time totals over a user's entries.
type LogStats struct {
	TotalHours         float64 `json:"total_hours"`
	PriorityHours      float64 `json:"priority_hours"`
	SupplementaryHours float64 `json:"supplementary_hours"`
	TotalLogs          int64   `json:"total_logs"`
}
