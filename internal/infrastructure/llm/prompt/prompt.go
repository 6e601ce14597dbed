// Package prompt holds the instructions sent to the AI services. Every
// provider shares them so plans look the same regardless of backend.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
)

const (
	OCRInstruction = "Extract all readable text from this image. Return only the text."
	OCRTemperature = 0
	OCRMaxTokens   = 4096
)

// BuildPlanPrompt asks for a strict JSON plan covering every listed file.
func BuildPlanPrompt(fileNames []string, corpus string) string {
	originals := "(none found)"
	if len(fileNames) > 0 {
		lines := make([]string, len(fileNames))
		for i, name := range fileNames {
			lines[i] = "- " + name
		}
		originals = strings.Join(lines, "\n")
	}

	quoted := make([]string, 0, len(domain.DefaultFolders))
	for _, folder := range domain.DefaultFolders {
		quoted = append(quoted, fmt.Sprintf("%q", folder))
	}

	return fmt.Sprintf(`Return ONLY valid JSON with this exact shape:
{
  "summary_for_recipient": "string",
  "timeline": [{"date_or_period":"string","event":"string"}],
  "folders": [%s],
  "file_plan": [
    {
      "original":"string",
      "folder":"string",
      "new_name":"string",
      "reason":"string"
    }
  ]
}

CRITICAL RULES:
- Create exactly ONE file_plan entry for EACH original filename listed below.
- "original" MUST exactly match one of the originals (character-for-character).
- "folder" MUST be exactly one of the values in "folders".
- If not confident, choose folder="%s".
- "new_name" MUST keep the SAME file extension as the original (e.g., .jpg stays .jpg).
- "new_name" should be short, readable, and avoid special characters. Use underscores if needed.
- "reason" must be 5-12 words, describing why that folder was chosen.
- No advice. No new facts. Only organize provided content.

ORIGINAL FILENAMES (must cover all of them):
%s

CONTENT:
%s
`, strings.Join(quoted, ","), domain.UnsortedFolder, originals, corpus)
}
