package categorizer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Classifier labels descriptions with free-text category names. The reply
// keys are expected to echo the descriptions but may differ cosmetically.
type Classifier interface {
	Classify(ctx context.Context, descriptions []string, allowedLabels []string) (map[string]string, error)
	Name() string
}

// ErrUnparseableReply is returned when no JSON object can be recovered from
// a classifier reply.
var ErrUnparseableReply = errors.New("classifier reply is not a JSON object")

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'",
)

// ParseLabelReply extracts a description to label map from raw model
// output. It tries the text as is, then the outermost {...} span, then both
// again with typographic quotes replaced.
func ParseLabelReply(raw string) (map[string]string, error) {
	text := stripFences(raw)
	candidates := []string{text, outerObject(text)}
	normalized := smartQuotes.Replace(text)
	candidates = append(candidates, normalized, outerObject(normalized))

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if out, ok := decodeLabels(c); ok {
			return out, nil
		}
	}
	return nil, ErrUnparseableReply
}

func decodeLabels(s string) (map[string]string, bool) {
	var generic map[string]interface{}
	if err := json.Unmarshal([]byte(s), &generic); err != nil {
		return nil, false
	}
	out := make(map[string]string, len(generic))
	for k, v := range generic {
		if label, ok := v.(string); ok && strings.TrimSpace(label) != "" {
			out[k] = strings.TrimSpace(label)
		}
	}
	return out, true
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

func outerObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
