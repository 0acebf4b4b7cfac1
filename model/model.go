package model

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the skill level a cheatsheet targets.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Difficulties lists the accepted values in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// ParseDifficulty matches s case-insensitively. An empty string yields Beginner.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Beginner, nil
	}
	for _, d := range Difficulties {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Category is one of the top-level groupings. Name doubles as the directory
// name in the library and as the URL segment.
type Category struct {
	Name        string `yaml:"name" json:"name"`
	Icon        string `yaml:"icon" json:"icon"`
	Description string `yaml:"description" json:"description"`
	Color       string `yaml:"color" json:"color"`
	Order       int    `yaml:"-" json:"order"`
}

// CategorySummary is a category plus the number of cheatsheets loaded for it.
type CategorySummary struct {
	Category
	ToolCount int `json:"toolCount"`
}

// CheatsheetMeta is everything about a cheatsheet except its body.
type CheatsheetMeta struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Slug        string     `json:"slug"`
	Icon        string     `json:"icon"`
	Difficulty  Difficulty `json:"difficulty"`
	Popularity  int        `json:"popularity"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Key identifies a cheatsheet as "category/slug".
func (m CheatsheetMeta) Key() string {
	return m.Category + "/" + m.Slug
}

// Cheatsheet is a loaded markdown document.
type Cheatsheet struct {
	CheatsheetMeta
	Content string `json:"content"`
	Source  string `json:"-"`
}

// Heading is one entry of a rendered table of contents.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// RenderedCheatsheet carries the sanitized HTML and table of contents.
type RenderedCheatsheet struct {
	Cheatsheet
	HTML           string    `json:"html"`
	TOC            []Heading `json:"toc"`
	ReadingMinutes int       `json:"readingMinutes"`
}

// Page is one page of a paginated result.
type Page[T any] struct {
	Items      []T `json:"cheatsheets"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// SavedItem is one bookmark owned by a client.
type SavedItem struct {
	ClientID string    `json:"clientId"`
	Item     string    `json:"item"`
	SavedAt  time.Time `json:"savedAt"`
}

// ViewCount is the number of times a cheatsheet page was served.
type ViewCount struct {
	Key   string `json:"key"`
	Views int64  `json:"views"`
}
