package camera

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	separatorRe  = regexp.MustCompile(`[\s_-]+`)
)

// Normalize lowercases a spoken position name and collapses whitespace runs
// to single underscores, matching the preset key format.
func Normalize(name string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}

// Resolve maps a free-form spoken position name to a preset. Matching is
// ordered: exact key, substring in either direction, then per-token
// substring. Returns false when nothing matches; callers must not broadcast
// in that case.
func Resolve(name string) (Position, bool) {
	normalized := Normalize(name)
	if normalized == "" {
		return Position{}, false
	}

	if pos, ok := presets[normalized]; ok {
		return pos, true
	}

	// Sorted key order keeps ambiguous inputs resolving deterministically.
	keys := PresetNames()

	for _, key := range keys {
		if strings.Contains(key, normalized) || strings.Contains(normalized, key) {
			return presets[key], true
		}
	}

	for _, token := range separatorRe.Split(normalized, -1) {
		if token == "" {
			continue
		}
		for _, key := range keys {
			if strings.Contains(key, token) || strings.Contains(token, key) {
				return presets[key], true
			}
		}
	}

	return Position{}, false
}
