package models

import "time"

// Category is a spending category with its learned keywords.
type Category struct {
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	AliasName string            `json:"alias,omitempty" yaml:"alias,omitempty"`
	Keywords  []CategoryKeyword `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// CategoryKeyword is a case-insensitive substring (or, with IsExact, whole
// description) rule pointing at its category.
type CategoryKeyword struct {
	Keyword  string `json:"keyword" yaml:"keyword"`
	IsExact  bool   `json:"is_exact,omitempty" yaml:"is_exact,omitempty"`
	Priority int    `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// RecurringKeyword marks every matching description as recurring.
type RecurringKeyword struct {
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"created_at"`
}
