package domain

import (
	"regexp"
	"strings"
	"time"
)

// ArticleStatus tracks the CMS visibility of a generated article.
type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticlePublished ArticleStatus = "published"
)

// Severity grades execution-log entries.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// LogEntry is one timestamped line of an execution log kept on articles and
// schedules.
type LogEntry struct {
	Time     time.Time
	Message  string
	Severity Severity
}

// Article is the output artifact of one successful generation run.
type Article struct {
	ID              string
	Title           string
	Slug            string
	Body            string
	MetaDescription string
	Keyword         string
	Tags            []string
	SchemaJSON      string
	Status          ArticleStatus
	AuthorID        string
	FeaturedImageID string
	ImageIDs        []string
	Log             []LogEntry
	CreatedAt       time.Time
}

// ImageResult is one stock-photo candidate returned by an image provider.
type ImageResult struct {
	URL             string
	AltText         string
	Photographer    string
	PhotographerURL string
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the text and collapses everything outside [a-z0-9] into
// single hyphens. An all-symbol input produces an empty slug; callers fall
// back to a topic-derived slug in that case.
func Slugify(text string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(slug, "-")
}
