// Package view computes the filtered, grouped, sorted beer lists and renders
// them through templates, including the bookmarkable view-state fragments.
package view

import (
	"net/url"
	"strconv"
	"strings"
)

// State is the set of filter/sort parameters for one render. It is built per
// request from URL parameters and discarded after the render.
type State struct {
	Page      string
	Colour    string
	Metastyle string
	Order     string
	Search    string
	Tasted    bool
	Saved     bool
	Today     bool
	Mini      bool

	// TastedIDs and SavedIDs carry the client's marked beers when the
	// tasted/saved filters are active.
	TastedIDs map[int]bool
	SavedIDs  map[int]bool
}

// StateFromValues decodes a State from URL query parameters.
func StateFromValues(values url.Values) State {
	return State{
		Page:      values.Get("page"),
		Colour:    values.Get("colour"),
		Metastyle: values.Get("metastyle"),
		Order:     values.Get("order"),
		Search:    values.Get("search"),
		Tasted:    truthy(values.Get("tasted")),
		Saved:     truthy(values.Get("saved")),
		Today:     truthy(values.Get("today")),
		Mini:      truthy(values.Get("mini")),
		TastedIDs: idSet(values.Get("tasted_ids")),
		SavedIDs:  idSet(values.Get("saved_ids")),
	}
}

// Settings returns the bookmarkable subset of the state as a settings
// mapping, with unset keys omitted.
func (s State) Settings() map[string]any {
	settings := make(map[string]any)
	if s.Colour != "" {
		settings["colour"] = s.Colour
	}
	if s.Metastyle != "" {
		settings["metastyle"] = s.Metastyle
	}
	if s.Order != "" {
		settings["order"] = s.Order
	}
	if s.Tasted {
		settings["tasted"] = true
	}
	if s.Saved {
		settings["saved"] = true
	}
	if s.Today {
		settings["today"] = true
	}
	if s.Mini {
		settings["mini"] = true
	}
	return settings
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// idSet parses a comma-separated beer ID list, ignoring blanks and junk.
func idSet(raw string) map[int]bool {
	if raw == "" {
		return nil
	}
	ids := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		ids[id] = true
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}
