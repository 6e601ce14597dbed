package usecase

import (
	"fmt"
	"unicode/utf8"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
)

const DefaultMaxTextChars = 30000

func fileChunk(label, text string) string {
	return fmt.Sprintf("\n\n=== FILE: %s ===\n%s", label, text)
}

// Aggregate concatenates labeled extraction results in input order. It fails
// as soon as the next chunk would push the corpus past limitChars; nothing is
// truncated.
func Aggregate(results []domain.ExtractionResult, limitChars int) (string, error) {
	var corpus []byte
	length := 0
	for _, result := range results {
		chunk := fileChunk(result.File.SafeName, result.Text)
		chunkLen := utf8.RuneCountInString(chunk)
		if length+chunkLen > limitChars {
			return "", domain.NewUserError(
				domain.ErrBudgetExceeded,
				"Total extracted text exceeds limit (%d characters). Please upload fewer or smaller files.",
				limitChars,
			)
		}
		corpus = append(corpus, chunk...)
		length += chunkLen
	}
	return string(corpus), nil
}
