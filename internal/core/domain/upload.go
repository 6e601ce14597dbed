package domain

// UploadedFile describes one file of a batch. Its bytes stay in the request's
// staging session and are addressed by Key.
type UploadedFile struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	SafeName string `json:"safe_name"`
	Size     int64  `json:"size"`
	Key      string `json:"key"`
}

type ExtractionResult struct {
	File UploadedFile `json:"file"`
	Text string       `json:"text"`
	// Failure is the kind of a recovered extraction error, empty on success.
	Failure string `json:"failure,omitempty"`
}

type PackageResult struct {
	Archive         []byte
	Files           int
	FallbackEntries int
	ParseFallback   bool
}
