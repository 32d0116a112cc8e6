package dataset

import (
	"strings"
	"time"
)

const (
	ColAppName         = "app_name"
	ColAppCategory     = "app_category"
	ColReviewText      = "review_text"
	ColRating          = "rating"
	ColUserAge         = "user_age"
	ColUserCountry     = "user_country"
	ColUserGender      = "user_gender"
	ColAppVersion      = "app_version"
	ColNumHelpfulVotes = "num_helpful_votes"
	ColReviewDate      = "review_date"
	ColReviewLanguage  = "review_language"
)

type Record map[string]string

type RawTable struct {
	Columns []string
	Rows    []Record
}

func (t RawTable) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

type Review struct {
	AppName         string    `json:"app_name"`
	AppCategory     string    `json:"app_category"`
	ReviewText      string    `json:"review_text"`
	Rating          float64   `json:"rating"`
	UserAge         int       `json:"user_age"`
	UserCountry     string    `json:"user_country"`
	UserGender      string    `json:"user_gender"`
	AppVersion      string    `json:"app_version"`
	NumHelpfulVotes int       `json:"num_helpful_votes"`
	ReviewDate      time.Time `json:"review_date"`
	ReviewLanguage  string    `json:"review_language"`

	ReviewLength    int    `json:"review_length"`
	ReviewWordCount int    `json:"review_word_count"`
	ReviewYear      int    `json:"review_year"`
	ReviewMonth     int    `json:"review_month"`
	RatingCategory  string `json:"rating_category"`
	AgeGroup        string `json:"age_group"`
}

func (r Review) HasDate() bool {
	return !r.ReviewDate.IsZero()
}

type Snapshot struct {
	ID          string    `json:"id"`
	BuiltAt     time.Time `json:"built_at"`
	SourceRows  int       `json:"source_rows"`
	DroppedRows int       `json:"dropped_rows"`
	Reviews     []Review  `json:"-"`
}

var missingLiterals = map[string]bool{
	"":     true,
	"nan":  true,
	"null": true,
	"none": true,
	"na":   true,
	"n/a":  true,
}

func IsMissing(value string) bool {
	return missingLiterals[strings.ToLower(strings.TrimSpace(value))]
}

func (r Record) Value(column string) (string, bool) {
	v, ok := r[column]
	if !ok || IsMissing(v) {
		return "", false
	}
	return strings.TrimSpace(v), true
}
