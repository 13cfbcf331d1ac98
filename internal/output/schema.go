package output

import (
	"time"

	"github.com/gosense/gosense/internal/lookup"
)

// SuggestionList is the output of sdk, local and complete.
type SuggestionList struct {
	// File is the file the suggestions were computed for.
	File string `yaml:"file" json:"file"`

	// Offset is the cursor byte offset (complete only).
	Offset int `yaml:"offset,omitempty" json:"offset,omitempty"`

	// Kind is "import" or "identifier".
	Kind string `yaml:"kind" json:"kind"`

	// Prefix is the raw text typed before the cursor.
	Prefix string `yaml:"prefix" json:"prefix"`

	// Contexts are the template context IDs applicable at the cursor.
	Contexts []string `yaml:"contexts,omitempty" json:"contexts,omitempty"`

	// Count is len(Suggestions).
	Count int `yaml:"count" json:"count"`

	Suggestions []Suggestion `yaml:"suggestions" json:"suggestions"`
}

// Suggestion is one completion candidate.
type Suggestion struct {
	// Text is the label; it is also the inserted text unless Insert is set.
	Text string `yaml:"text" json:"text"`

	// Identifier is the candidate before prefix-shape formatting.
	Identifier string `yaml:"identifier,omitempty" json:"identifier,omitempty"`

	TailText string `yaml:"tail_text,omitempty" json:"tail_text,omitempty"`
	TypeText string `yaml:"type_text,omitempty" json:"type_text,omitempty"`
	Bold     bool   `yaml:"bold,omitempty" json:"bold,omitempty"`
	Style    string `yaml:"style,omitempty" json:"style,omitempty"`

	// Source is the provider: sdk, project, file, package or keyword.
	Source string `yaml:"source" json:"source"`

	// Insert is the text inserted on acceptance when it differs from Text.
	Insert string `yaml:"insert,omitempty" json:"insert,omitempty"`

	// Caret is the cursor position within Insert after acceptance.
	Caret int `yaml:"caret,omitempty" json:"caret,omitempty"`
}

// NewSuggestion builds a Suggestion from a lookup entry.
func NewSuggestion(e lookup.Entry, identifier, source string) Suggestion {
	s := Suggestion{
		Text:       e.Text,
		Identifier: identifier,
		TailText:   e.TailText,
		TypeText:   e.TypeText,
		Bold:       e.Bold,
		Style:      e.Style.String(),
		Source:     source,
	}
	if identifier == e.Text {
		s.Identifier = ""
	}
	if e.Insert != nil {
		ins := e.Apply()
		s.Insert = ins.Text
		s.Caret = ins.Caret
	}
	return s
}

// EntryList is the output of lookup.
type EntryList struct {
	File    string  `yaml:"file" json:"file"`
	Package string  `yaml:"package,omitempty" json:"package,omitempty"`
	Count   int     `yaml:"count" json:"count"`
	Entries []Entry `yaml:"entries" json:"entries"`
}

// Entry is one declaration presented as a lookup entry.
type Entry struct {
	Text     string `yaml:"text" json:"text"`
	Style    string `yaml:"style,omitempty" json:"style,omitempty"`
	TailText string `yaml:"tail_text,omitempty" json:"tail_text,omitempty"`
	TypeText string `yaml:"type_text,omitempty" json:"type_text,omitempty"`
	Bold     bool   `yaml:"bold,omitempty" json:"bold,omitempty"`
}

// NewEntry converts a lookup entry.
func NewEntry(e lookup.Entry) Entry {
	return Entry{
		Text:     e.Text,
		Style:    e.Style.String(),
		TailText: e.TailText,
		TypeText: e.TypeText,
		Bold:     e.Bold,
	}
}

// ImportList is the output of imports.
type ImportList struct {
	File    string   `yaml:"file" json:"file"`
	Package string   `yaml:"package,omitempty" json:"package,omitempty"`
	Imports []Import `yaml:"imports" json:"imports"`
}

// Import is one import spec.
type Import struct {
	Path  string `yaml:"path" json:"path"`
	Alias string `yaml:"alias,omitempty" json:"alias,omitempty"`

	// Name is the package name the import binds; empty for blank and dot
	// imports.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	Line int `yaml:"line" json:"line"`
}

// ContextReport is the output of context.
type ContextReport struct {
	File     string    `yaml:"file" json:"file"`
	Offset   int       `yaml:"offset" json:"offset"`
	Contexts []Context `yaml:"contexts" json:"contexts"`
}

// Context is one applicable template context.
type Context struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Base string `yaml:"base" json:"base"`
}

// HistoryList is the output of history.
type HistoryList struct {
	Path    string         `yaml:"path" json:"path"`
	Stats   *HistoryStats  `yaml:"stats,omitempty" json:"stats,omitempty"`
	Queries []HistoryQuery `yaml:"queries" json:"queries"`
}

// HistoryStats summarizes the recorded queries.
type HistoryStats struct {
	Total        int64            `yaml:"total" json:"total"`
	ByKind       map[string]int64 `yaml:"by_kind,omitempty" json:"by_kind,omitempty"`
	MeanDuration string           `yaml:"mean_duration" json:"mean_duration"`
}

// HistoryQuery is one recorded query.
type HistoryQuery struct {
	ID       int64  `yaml:"id" json:"id"`
	File     string `yaml:"file" json:"file"`
	Kind     string `yaml:"kind" json:"kind"`
	Prefix   string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Offset   int    `yaml:"offset" json:"offset"`
	Items    int    `yaml:"items" json:"items"`
	SDK      int    `yaml:"sdk,omitempty" json:"sdk,omitempty"`
	Local    int    `yaml:"local,omitempty" json:"local,omitempty"`
	Duration string `yaml:"duration" json:"duration"`
	At       string `yaml:"at" json:"at"`
}

// FormatDuration renders d rounded to microseconds.
func FormatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
