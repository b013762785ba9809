package gateway

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrMalformedOutline indicates the upstream reply held no usable outline.
var ErrMalformedOutline = errors.New("gateway: upstream reply is not an outline")

// defaultEstimatedTime is used when an outline entry has no usable estimate.
const defaultEstimatedTime = 5

type outlineEntry struct {
	Type          string `json:"type"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime any    `json:"estimatedTime"`
}

// parseOutline extracts the first non-empty JSON array from text, tolerating
// prose or code fences around it. Brackets in the prose are skipped: each '['
// is tried in turn and decoding stops after one complete value. Entry order
// is preserved.
func parseOutline(text string) ([]BlockOutline, error) {
	var (
		entries []outlineEntry
		lastErr error
	)
	for i := strings.IndexByte(text, '['); i >= 0; {
		var candidate []outlineEntry
		err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&candidate)
		if err == nil && len(candidate) > 0 {
			entries = candidate
			break
		}
		if err != nil {
			lastErr = err
		}
		next := strings.IndexByte(text[i+1:], '[')
		if next < 0 {
			break
		}
		i += next + 1
	}
	if entries == nil {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutline, lastErr)
		}
		return nil, fmt.Errorf("%w: no JSON array found", ErrMalformedOutline)
	}

	out := make([]BlockOutline, len(entries))
	for i, e := range entries {
		blockType := strings.TrimSpace(e.Type)
		if blockType == "" {
			blockType = "text"
		}
		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = fmt.Sprintf("Block %d", i+1)
		}
		out[i] = BlockOutline{
			Type:               blockType,
			Title:              title,
			Description:        strings.TrimSpace(e.Description),
			EstimatedTime:      estimatedMinutes(e.EstimatedTime),
			PlaceholderContent: PlaceholderContent(blockType, title),
		}
	}
	return out, nil
}

// estimatedMinutes accepts a number or a string such as "10 minutes".
func estimatedMinutes(v any) int {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return int(math.Round(t))
		}
	case string:
		fields := strings.Fields(t)
		if len(fields) > 0 {
			if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
				return n
			}
		}
	}
	return defaultEstimatedTime
}

// PlaceholderContent returns starter content for a planned block. It is a
// pure function of its inputs.
func PlaceholderContent(blockType, title string) any {
	switch blockType {
	case "quiz":
		return map[string]any{
			"title": title,
			"questions": []any{
				map[string]any{
					"question":     fmt.Sprintf("Question about %s", title),
					"options":      []any{"Option A", "Option B", "Option C", "Option D"},
					"correctIndex": 0,
					"explanation":  "",
				},
			},
		}
	case "flashcards":
		return map[string]any{
			"title": title,
			"cards": []any{
				map[string]any{"front": title, "back": fmt.Sprintf("Key idea of %s", title)},
			},
		}
	case "reflection":
		return map[string]any{
			"title":            title,
			"prompt":           fmt.Sprintf("Reflect on %s.", title),
			"guidingQuestions": []any{},
		}
	case "discussion":
		return map[string]any{
			"title":         title,
			"question":      fmt.Sprintf("What do you think about %s?", title),
			"talkingPoints": []any{},
		}
	case "checklist":
		return map[string]any{
			"title": title,
			"items": []any{},
		}
	default:
		return map[string]any{
			"title": title,
			"body":  fmt.Sprintf("Content for %q will be written here.", title),
		}
	}
}
