package domain

const UnsortedFolder = "Unsorted"

// DefaultFolders is the fixed taxonomy every package is organized into.
var DefaultFolders = []string{
	"Income",
	"Expenses",
	"Bank_Statements",
	"Emails",
	"Contracts",
	"IDs",
	"Medical",
	"Education",
	"Other",
	UnsortedFolder,
}

func TaxonomyFolders() []string {
	out := make([]string, len(DefaultFolders))
	copy(out, DefaultFolders)
	return out
}

func IsTaxonomyFolder(folder string) bool {
	for _, f := range DefaultFolders {
		if f == folder {
			return true
		}
	}
	return false
}

type TimelineEntry struct {
	Period string `json:"date_or_period"`
	Event  string `json:"event"`
}

type FilePlanEntry struct {
	Original string `json:"original"`
	Folder   string `json:"folder"`
	NewName  string `json:"new_name"`
	Reason   string `json:"reason"`
}

// ClassificationPlan is the shape the classifier is asked to return.
type ClassificationPlan struct {
	Summary  string          `json:"summary_for_recipient"`
	Timeline []TimelineEntry `json:"timeline"`
	Folders  []string        `json:"folders"`
	FilePlan []FilePlanEntry `json:"file_plan"`
}

// ReconciledPlan has exactly one FilePlan entry per original file, in input
// order, and Folders is always the default taxonomy.
type ReconciledPlan struct {
	ClassificationPlan
	// Fallback is set when the classifier output could not be parsed at all.
	Fallback bool `json:"-"`
	// Synthesized counts entries created because the classifier omitted them.
	Synthesized int `json:"-"`
}

type ArchiveEntry struct {
	Path    string
	Content []byte
}

// ArchiveLayout maps unique archive paths to content. Dirs are emitted as
// empty directory entries.
type ArchiveLayout struct {
	Dirs    []string
	Entries []ArchiveEntry
}
