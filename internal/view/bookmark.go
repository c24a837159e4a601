package view

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Bookmark fragments encode the settings mapping as escaped JSON inside
// brackets after a "#page" prefix, e.g. #session[{&quot;colour&quot;:&quot;blue&quot;}].
// The quote replacement keeps the fragment free of percent-escaping so it can
// be pasted anywhere. The format must stay byte-compatible with existing
// bookmarks.

// Deliberately unanchored: a "!word" anywhere in the value marks a toggle,
// which existing bookmark links rely on.
var toggleRe = regexp.MustCompile(`!\w+`)

// ApplyUpdates mutates settings with comma-separated "key=value" tokens:
// a value of "!" deletes the key, a value containing "!word" toggles the key
// as a boolean, any other value sets the key.
func ApplyUpdates(settings map[string]any, updates string) map[string]any {
	for _, token := range strings.Split(updates, ",") {
		kv := strings.SplitN(token, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])

		switch {
		case value == "!":
			delete(settings, key)
		case toggleRe.MatchString(value):
			settings[key] = !truthyAny(settings[key])
		default:
			settings[key] = value
		}
	}
	return settings
}

// Fragment encodes a page name and settings mapping as a bookmark fragment.
func Fragment(page string, settings map[string]any) string {
	encoded, err := json.Marshal(settings)
	if err != nil {
		// A settings map only ever holds strings and bools.
		return "#" + page
	}
	return "#" + page + "[" + strings.ReplaceAll(string(encoded), `"`, "&quot;") + "]"
}

func truthyAny(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return truthy(t)
	case nil:
		return false
	default:
		return true
	}
}
