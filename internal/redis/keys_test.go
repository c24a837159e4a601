package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRatingKey(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		wantID     int
		wantField  string
		wantParsed bool
	}{
		{name: "rating key", key: "_br42_rating", wantID: 42, wantField: "rating", wantParsed: true},
		{name: "count key", key: "_br42_count", wantID: 42, wantField: "count", wantParsed: true},
		{name: "large id", key: "_br123456_rating", wantID: 123456, wantField: "rating", wantParsed: true},
		{name: "no digits", key: "_brabc_rating", wantParsed: false},
		{name: "bare prefix", key: "_br", wantParsed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, field, ok := parseRatingKey(tt.key)
			assert.Equal(t, tt.wantParsed, ok)
			if tt.wantParsed {
				assert.Equal(t, tt.wantID, id)
				assert.Equal(t, tt.wantField, field)
			}
		})
	}
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "_snapshot_abc123", snapshotKey("abc123"))
}
