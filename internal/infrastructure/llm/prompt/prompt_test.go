package prompt

import (
	"strings"
	"testing"
)

func TestBuildPlanPromptListsEveryFile(t *testing.T) {
	got := BuildPlanPrompt([]string{"scan_1.jpg", "notes.txt"}, "=== FILE: notes.txt ===\nrent paid")

	for _, want := range []string{
		"- scan_1.jpg\n- notes.txt",
		"Create exactly ONE file_plan entry for EACH original filename",
		`"Bank_Statements"`,
		`folder="Unsorted"`,
		"No advice. No new facts. Only organize provided content.",
		"rent paid",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt is missing %q:\n%s", want, got)
		}
	}
}

func TestBuildPlanPromptWithoutFiles(t *testing.T) {
	if got := BuildPlanPrompt(nil, ""); !strings.Contains(got, "(none found)") {
		t.Fatalf("expected placeholder for empty file list")
	}
}
