package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	GuardianName          = "Climate Guardian"
	GuardianUserAgent     = "ClimateGuardian/0.1"
	GuardianRepositoryURL = "https://github.com/sandevgo/guardian"
	GuardianVersion       = "0.1.0"
)

// Document is one normalized climate fact in the knowledge base. Documents
// are never mutated in place: a newer fact for the same (category, subject
// key) supersedes the older row.
type Document struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	Source      string             `json:"source"`
	Category    string             `json:"category"`
	SubjectKey  string             `json:"subject_key"`
	Numbers     map[string]float64 `json:"numbers,omitempty"`
	RetrievedAt time.Time          `json:"retrieved_at"`
}

// Key is the supersede key: a fresher document with the same key replaces
// the older one in active listings and in the index.
func (d Document) Key() string {
	return d.Category + "/" + d.SubjectKey
}

// Fact is the raw ingestion-feed payload before validation. Collaborators
// supply these; the Ingestor turns them into Documents.
type Fact struct {
	Provider    string             `json:"provider"`
	Subject     string             `json:"subject"`
	SubjectKey  string             `json:"subject_key"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	Category    string             `json:"category"`
	Numbers     map[string]float64 `json:"numbers,omitempty"`
	RetrievedAt time.Time          `json:"retrieved_at"`
}

// DocumentID derives a stable id from the fields that make a document
// distinct. Two ingests of the same fact produce the same id.
func DocumentID(category, subjectKey string, retrievedAt time.Time) string {
	h := sha256.Sum256([]byte(category + "\x00" + subjectKey + "\x00" + retrievedAt.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(h[:8])
}

// Profile carries the caller-supplied situational facts used to enrich
// retrieval and personalize answers. All fields are optional.
type Profile struct {
	Location   string   `json:"location,omitempty"`
	Lifestyle  string   `json:"lifestyle,omitempty"`
	Interests  []string `json:"interests,omitempty"`
	BudgetBand string   `json:"budget_band,omitempty"`
}

// Empty reports whether the profile carries no usable signal.
func (p *Profile) Empty() bool {
	return p == nil || (p.Location == "" && p.Lifestyle == "" && len(p.Interests) == 0 && p.BudgetBand == "")
}

// Summary renders the profile as a single enrichment line.
func (p *Profile) Summary() string {
	if p.Empty() {
		return ""
	}
	var parts []string
	if p.Location != "" {
		parts = append(parts, "location: "+p.Location)
	}
	if p.Lifestyle != "" {
		parts = append(parts, "lifestyle: "+p.Lifestyle)
	}
	if len(p.Interests) > 0 {
		parts = append(parts, "interests: "+strings.Join(p.Interests, ", "))
	}
	if p.BudgetBand != "" {
		parts = append(parts, "budget: "+p.BudgetBand)
	}
	return strings.Join(parts, "; ")
}

// RetrievedDoc pairs a document with its cosine similarity to the query.
type RetrievedDoc struct {
	Doc        Document
	Similarity float64
}

// QueryContext is the request-scoped state of one question flowing through
// the pipeline. It is never persisted.
type QueryContext struct {
	RawQuery  string
	Profile   *Profile
	Retrieved []RetrievedDoc
}

// GenerationResult is the orchestrator's outcome. Degraded marks answers
// produced by the deterministic fallback instead of the generation service.
type GenerationResult struct {
	AnswerText       string
	CitedDocumentIDs []string
	Degraded         bool
}

// SourceRef is one cited source as exposed to callers.
type SourceRef struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Answer is what the public entry point returns.
type Answer struct {
	Text     string      `json:"text"`
	Sources  []SourceRef `json:"sources"`
	Degraded bool        `json:"degraded"`
}

// CompletionRequest is the contract with the external generation service.
type CompletionRequest struct {
	Prompt          string
	MaxOutputTokens int
	Temperature     float64
}
