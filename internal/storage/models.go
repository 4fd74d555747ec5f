package storage

import "time"

// Run is one invocation of the analyzer over a set of paths.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Root       string
	Files      int
	Methods    int
}

// FileRecord holds the analyzed methods of one file.
type FileRecord struct {
	Path    string
	Methods []MethodRecord
}

// MethodRecord is one analyzed method and its candidate spans.
type MethodRecord struct {
	Name          string
	StartLine     int
	EndLine       int
	Statements    int
	Opportunities []OpportunityRecord
}

// OpportunityRecord is one generated span and the filter's verdict on it.
type OpportunityRecord struct {
	Ordinal    int
	Level      int
	StartLine  int
	EndLine    int
	Statements int
	Accepted   bool
	Reason     string
}

// StoredOpportunity is an opportunity read back with its owning method.
type StoredOpportunity struct {
	FilePath string
	Method   string
	OpportunityRecord
}

// timeLayout is a fixed-width RFC 3339 layout, so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
