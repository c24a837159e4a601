package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyUpdates_SetsValues(t *testing.T) {
	settings := map[string]any{"colour": "red"}
	got := ApplyUpdates(settings, "metastyle=Sour")

	assert.Equal(t, map[string]any{"colour": "red", "metastyle": "Sour"}, got)
}

func TestApplyUpdates_ToggleSyntax(t *testing.T) {
	settings := map[string]any{"colour": "red", "mini": true}
	got := ApplyUpdates(settings, "mini=!1")

	assert.Equal(t, map[string]any{"colour": "red", "mini": false}, got)
}

func TestApplyUpdates_ToggleUnsetKeyTurnsItOn(t *testing.T) {
	got := ApplyUpdates(map[string]any{}, "mini=!1")
	assert.Equal(t, map[string]any{"mini": true}, got)
}

func TestApplyUpdates_ToggleMatchesAnywhereInValue(t *testing.T) {
	// A "!word" embedded in the value still marks a toggle, never a set.
	settings := map[string]any{"mini": true}
	got := ApplyUpdates(settings, "mini=x!y")

	assert.Equal(t, map[string]any{"mini": false}, got)
}

func TestApplyUpdates_DeleteSyntax(t *testing.T) {
	settings := map[string]any{"colour": "red", "mini": false}
	got := ApplyUpdates(settings, "colour=!")

	assert.Equal(t, map[string]any{"mini": false}, got)
}

func TestApplyUpdates_MultipleTokens(t *testing.T) {
	settings := map[string]any{"colour": "red", "mini": true}
	got := ApplyUpdates(settings, "colour=blue,mini=!1,order=rating")

	assert.Equal(t, map[string]any{"colour": "blue", "mini": false, "order": "rating"}, got)
}

func TestApplyUpdates_IgnoresMalformedTokens(t *testing.T) {
	settings := map[string]any{"colour": "red"}
	got := ApplyUpdates(settings, "garbage")

	assert.Equal(t, map[string]any{"colour": "red"}, got)
}

func TestFragment_EncodesEscapedJSONInBrackets(t *testing.T) {
	got := Fragment("session", map[string]any{"colour": "blue"})
	assert.Equal(t, "#session[{&quot;colour&quot;:&quot;blue&quot;}]", got)
}

func TestFragment_IsPercentFree(t *testing.T) {
	got := Fragment("session", map[string]any{"colour": "blue", "mini": true})
	assert.NotContains(t, got, "%")
	assert.NotContains(t, got, `"`)
}

func TestFragment_EmptySettings(t *testing.T) {
	got := Fragment("index", map[string]any{})
	assert.Equal(t, "#index[{}]", got)
}
