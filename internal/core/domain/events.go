package domain

import "time"

// PackageGenerated is published after an archive was produced. It carries
// counts only, never file names or content.
type PackageGenerated struct {
	RequestID       string    `json:"request_id,omitempty"`
	Files           int       `json:"files"`
	FallbackEntries int       `json:"fallback_entries"`
	ParseFallback   bool      `json:"parse_fallback"`
	ArchiveBytes    int       `json:"archive_bytes"`
	DurationMS      int64     `json:"duration_ms"`
	GeneratedAt     time.Time `json:"generated_at"`
}
