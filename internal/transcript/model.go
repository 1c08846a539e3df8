// Package transcript builds Transcription records from chunked inference
// results and runs the chunked-orchestration + graceful-degradation
// contract in front of the backend engine.
package transcript

import "time"

// SourceType distinguishes a live-dictation recording from a file import.
type SourceType string

const (
	SourceDictation SourceType = "dictation"
	SourceFile      SourceType = "file"
)

// Segment is one timestamped span of recognized text within a Transcription.
type Segment struct {
	StartMS    int64   `json:"startMs"`
	EndMS      int64   `json:"endMs"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Transcription is the result record handed to the persistence collaborator.
type Transcription struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	SourceType  SourceType `json:"sourceType"`
	SourceName  string     `json:"sourceName,omitempty"`
	DurationMS  int64      `json:"durationMs"`
	LanguageTag string     `json:"languageTag"`
	Segments    []Segment  `json:"segments"`
	RawText     string     `json:"rawText"`
	EditedText  string     `json:"editedText,omitempty"`
	IsEdited    bool       `json:"isEdited"`
}
