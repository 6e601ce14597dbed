package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/core/naming"
)

const (
	reasonParseFailure  = "Failed to parse model output"
	reasonInsufficient  = "Insufficient signal to classify confidently"
	reasonNotProvided   = "No reason provided"
	fallbackBaseMaxRune = 40
)

type modelPlan struct {
	Summary  json.RawMessage `json:"summary_for_recipient"`
	Timeline json.RawMessage `json:"timeline"`
	FilePlan json.RawMessage `json:"file_plan"`
}

type modelTimelineEntry struct {
	Period any `json:"date_or_period"`
	Event  any `json:"event"`
}

type modelFilePlanEntry struct {
	Original any `json:"original"`
	Folder   any `json:"folder"`
	NewName  any `json:"new_name"`
	Reason   any `json:"reason"`
}

// Reconcile turns raw classifier output into a plan with exactly one entry per
// original, in the order of originals. Unparseable output yields a plan that
// sends every file to Unsorted and keeps the raw text as the summary.
func Reconcile(raw string, originals []string) domain.ReconciledPlan {
	parsed, ok := parseModelPlan(raw)
	if !ok {
		return fallbackPlan(raw, originals)
	}

	proposed := make(map[string]modelFilePlanEntry)
	for _, entry := range decodeFilePlan(parsed.FilePlan) {
		original, ok := entry.Original.(string)
		if !ok || original == "" {
			continue
		}
		if _, seen := proposed[original]; seen {
			continue
		}
		proposed[original] = entry
	}

	plan := domain.ReconciledPlan{
		ClassificationPlan: domain.ClassificationPlan{
			Summary:  decodeString(parsed.Summary),
			Timeline: decodeTimeline(parsed.Timeline),
			Folders:  domain.TaxonomyFolders(),
			FilePlan: make([]domain.FilePlanEntry, 0, len(originals)),
		},
	}
	for _, original := range originals {
		entry, found := proposed[original]
		newName, isString := entry.NewName.(string)
		if !found || !isString {
			plan.FilePlan = append(plan.FilePlan, synthesizedEntry(original, reasonInsufficient))
			plan.Synthesized++
			continue
		}

		newName = strings.TrimSpace(newName)
		if newName == "" {
			newName = original
		}
		folder := stringOr(entry.Folder, domain.UnsortedFolder)
		reason := stringOr(entry.Reason, reasonNotProvided)
		plan.FilePlan = append(plan.FilePlan, domain.FilePlanEntry{
			Original: original,
			Folder:   folder,
			NewName:  naming.EnsureExtension(original, newName),
			Reason:   reason,
		})
	}
	return plan
}

func parseModelPlan(raw string) (modelPlan, bool) {
	body := strings.TrimSpace(extractJSONObject(raw))
	if body == "" || !strings.HasPrefix(body, "{") {
		return modelPlan{}, false
	}
	var parsed modelPlan
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return modelPlan{}, false
	}
	return parsed, true
}

// extractJSONObject trims prose or code fences around the outermost object.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func fallbackPlan(raw string, originals []string) domain.ReconciledPlan {
	plan := domain.ReconciledPlan{
		ClassificationPlan: domain.ClassificationPlan{
			Summary:  strings.TrimSpace(raw),
			Timeline: []domain.TimelineEntry{},
			Folders:  domain.TaxonomyFolders(),
			FilePlan: make([]domain.FilePlanEntry, 0, len(originals)),
		},
		Fallback: true,
	}
	for _, original := range originals {
		entry := synthesizedEntry(original, reasonParseFailure)
		entry.NewName = original
		plan.FilePlan = append(plan.FilePlan, entry)
	}
	return plan
}

func synthesizedEntry(original, reason string) domain.FilePlanEntry {
	base, ext := naming.SplitExtension(original)
	base = naming.Truncate(base, fallbackBaseMaxRune)
	if base == "" {
		base = "file"
	}
	return domain.FilePlanEntry{
		Original: original,
		Folder:   domain.UnsortedFolder,
		NewName:  base + ext,
		Reason:   reason,
	}
}

func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func decodeTimeline(raw json.RawMessage) []domain.TimelineEntry {
	out := []domain.TimelineEntry{}
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		var entry modelTimelineEntry
		if json.Unmarshal(item, &entry) != nil {
			continue
		}
		out = append(out, domain.TimelineEntry{
			Period: stringOr(entry.Period, ""),
			Event:  stringOr(entry.Event, ""),
		})
	}
	return out
}

func decodeFilePlan(raw json.RawMessage) []modelFilePlanEntry {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]modelFilePlanEntry, 0, len(items))
	for _, item := range items {
		var entry modelFilePlanEntry
		if json.Unmarshal(item, &entry) != nil {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// stringOr renders scalar JSON values as text and falls back for empty or
// missing values.
func stringOr(value any, fallback string) string {
	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	case float64, bool:
		return fmt.Sprint(v)
	default:
		return fallback
	}
}
