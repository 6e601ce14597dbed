package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/core/naming"
	"github.com/kirillkom/ready-to-send/internal/core/ports"
)

const (
	SummaryArtifact  = "Overview_Summary.txt"
	TimelineArtifact = "Timeline.txt"
	FoldersArtifact  = "Folders.txt"
	FilePlanArtifact = "File_Plan.txt"

	noSummary  = "No summary generated."
	noTimeline = "No timeline found."
	noFilePlan = "No file plan generated."
)

// Assemble resolves the final archive path of every file and renders the
// generated text artifacts. files must be the labeled batch the plan was
// reconciled against.
func Assemble(
	ctx context.Context,
	plan domain.ReconciledPlan,
	files []domain.UploadedFile,
	source ports.ContentSource,
) (domain.ArchiveLayout, error) {
	byOriginal := make(map[string]domain.FilePlanEntry, len(plan.FilePlan))
	for _, entry := range plan.FilePlan {
		if _, ok := byOriginal[entry.Original]; !ok {
			byOriginal[entry.Original] = entry
		}
	}

	registry := naming.NewPathRegistry()
	planLines := make([]string, 0, len(files))
	fileEntries := make([]domain.ArchiveEntry, 0, len(files))
	for _, file := range files {
		entry, ok := byOriginal[file.SafeName]
		if !ok {
			entry = synthesizedEntry(file.SafeName, reasonInsufficient)
		}

		folder := resolveFolder(entry.Folder)
		filename := naming.SafeFilename(naming.EnsureExtension(file.SafeName, entry.NewName))
		path := registry.Reserve(folder, filename)

		content, err := source.ReadFile(ctx, file)
		if err != nil {
			return domain.ArchiveLayout{}, fmt.Errorf("read %s for archive: %w", file.SafeName, err)
		}
		fileEntries = append(fileEntries, domain.ArchiveEntry{Path: path, Content: content})
		planLines = append(planLines, fmt.Sprintf("%s -> %s (%s)", entry.Original, path, entry.Reason))
	}

	folders := plan.Folders
	if len(folders) == 0 {
		folders = domain.TaxonomyFolders()
	}

	layout := domain.ArchiveLayout{
		Dirs: taxonomyDirs(),
		Entries: []domain.ArchiveEntry{
			textEntry(SummaryArtifact, orDefault(strings.TrimSpace(plan.Summary), noSummary)),
			textEntry(TimelineArtifact, renderTimeline(plan.Timeline)),
			textEntry(FoldersArtifact, strings.Join(folders, "\n")),
			textEntry(FilePlanArtifact, orDefault(strings.Join(planLines, "\n"), noFilePlan)),
		},
	}
	layout.Entries = append(layout.Entries, fileEntries...)
	return layout, nil
}

func resolveFolder(proposed string) string {
	folder := naming.Sanitize(strings.TrimSpace(proposed))
	if domain.IsTaxonomyFolder(folder) {
		return folder
	}
	return domain.UnsortedFolder
}

func taxonomyDirs() []string {
	dirs := make([]string, 0, len(domain.DefaultFolders))
	for _, folder := range domain.DefaultFolders {
		dirs = append(dirs, naming.Sanitize(folder))
	}
	return dirs
}

func renderTimeline(timeline []domain.TimelineEntry) string {
	if len(timeline) == 0 {
		return noTimeline
	}
	lines := make([]string, 0, len(timeline))
	for _, item := range timeline {
		lines = append(lines, fmt.Sprintf("- %s: %s", item.Period, item.Event))
	}
	return strings.Join(lines, "\n")
}

func textEntry(path, body string) domain.ArchiveEntry {
	return domain.ArchiveEntry{Path: path, Content: []byte(body)}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
