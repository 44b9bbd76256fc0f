package chunker

import (
	"fmt"

	"filing-rag/internal/models"
)

// Split cuts text into fixed-size windows of at most maxChars characters,
// advancing maxChars-overlap per step so consecutive chunks share overlap
// characters. The final chunk may be shorter. Splitting is purely
// positional; sentence and section boundaries are ignored. Windows are
// counted in Unicode code points, so a cut never lands inside a UTF-8
// sequence. Preconditions: maxChars > 0, overlap >= 0, overlap < maxChars.
func Split(text string, maxChars, overlap int) ([]string, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: max_chars must be > 0, got %d", models.ErrInvalidArgument, maxChars)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be >= 0, got %d", models.ErrInvalidArgument, overlap)
	}
	if overlap >= maxChars {
		return nil, fmt.Errorf("%w: overlap %d must be < max_chars %d", models.ErrInvalidArgument, overlap, maxChars)
	}

	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); i += maxChars - overlap {
		end := i + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks, nil
}
