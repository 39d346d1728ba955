package reconcile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/datasheet-miner/internal/common"
)

// stripFences removes leading/trailing Markdown code fences the model
// sometimes wraps around its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Parse recovers a list of raw objects from model output. The primary
// strategy decodes the whole text; when that fails for any reason the
// brace-scanning fallback recovers every fully-closed object before the
// damage point. The truncation check below only logs; it never decides
// which strategy runs.
func Parse(raw string, logger *slog.Logger) ([]map[string]any, error) {
	if logger == nil {
		logger = slog.Default()
	}
	text := stripFences(raw)

	if !strings.HasSuffix(text, "]") {
		logger.Warn("reconcile.parse.possible_truncation", "tail", tail(text, 40))
	}

	if objs, ok := parseWhole(text); ok {
		logger.Debug("reconcile.parse.primary_ok", "objects", len(objs))
		return objs, nil
	}

	objs := scanObjects(text, logger)
	if len(objs) == 0 {
		return nil, fmt.Errorf("%w: %d bytes of input", common.ErrParse, len(text))
	}
	logger.Info("reconcile.parse.fallback_ok", "objects", len(objs))
	return objs, nil
}

// parseWhole attempts to decode the entire text as JSON: an array of
// objects is used as-is, a single object is wrapped in a one-element
// list, anything else fails the strategy.
func parseWhole(text string) ([]map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		objs := make([]map[string]any, 0, len(t))
		for _, el := range t {
			if m, ok := el.(map[string]any); ok {
				objs = append(objs, m)
			}
		}
		if len(objs) == 0 {
			return nil, false
		}
		return objs, true
	case map[string]any:
		return []map[string]any{t}, true
	default:
		return nil, false
	}
}

// scanObjects locates the first '[' and walks the remaining characters
// tracking brace depth and quoted-string state, honoring backslash
// escapes so braces inside string literals are not counted. Every time
// depth returns to zero a candidate object is cut out and parsed on its
// own; a candidate that fails to parse is logged and skipped, it does
// not abort the scan.
func scanObjects(text string, logger *slog.Logger) []map[string]any {
	start := strings.Index(text, "[")
	if start < 0 {
		return nil
	}

	var (
		objs     []map[string]any
		depth    int
		inString bool
		escaped  bool
		objStart = -1
	)

	for i := start + 1; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && objStart >= 0 {
				candidate := strings.TrimSpace(text[objStart : i+1])
				candidate = strings.TrimRight(candidate, ", \t\n\r")
				if candidate == "" || candidate == "{}" {
					objStart = -1
					continue
				}
				var m map[string]any
				if err := json.Unmarshal([]byte(candidate), &m); err != nil {
					logger.Warn("reconcile.parse.candidate_skipped",
						"error", err,
						"candidate", tail(candidate, 80),
					)
				} else {
					objs = append(objs, m)
				}
				objStart = -1
			}
		}
	}
	return objs
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
