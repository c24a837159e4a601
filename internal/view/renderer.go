package view

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/cbrevik/cbc-menu/internal/domain"
)

// ErrMissingColour is returned when the session view is requested without a
// colour parameter.
var ErrMissingColour = errors.New("session view requires a colour")

// Variant names one of the closed set of render strategies. Unknown names are
// rejected with domain.ErrUnknownView rather than silently ignored.
type Variant string

const (
	VariantIndex    Variant = "index"
	VariantBeerlist Variant = "beerlist"
	VariantSession  Variant = "session"
	VariantLoad     Variant = "load"
)

// Page is the data handed to the templates.
type Page struct {
	Title     string
	Typeclass string
	Message   string
	State     State
	List      BeerList
	Dataset   *domain.Dataset
}

// Renderer renders the view variants from parsed templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the template files from the given filesystem.
func NewRenderer(templateFS fs.FS) (*Renderer, error) {
	tmpl := template.New("views").Funcs(template.FuncMap{
		"ratingAsPercent": ratingAsPercent,
		// Placeholder so parsing succeeds; replaced per render with a closure
		// over the current view state.
		"tset": func(string) template.URL { return "" },
	})

	tmpl, err := tmpl.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse view templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render dispatches to the named variant and writes the resulting HTML.
func (r *Renderer) Render(w io.Writer, name Variant, ds *domain.Dataset, state State, message string) error {
	switch name {
	case VariantIndex:
		return r.renderIndex(w, ds, state, message)
	case VariantBeerlist:
		return r.renderBeerlist(w, ds, state)
	case VariantSession:
		return r.renderSession(w, ds, state)
	case VariantLoad:
		return r.renderLoad(w, ds, state)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownView, name)
	}
}

func (r *Renderer) renderIndex(w io.Writer, ds *domain.Dataset, state State, message string) error {
	state.Page = "index"
	return r.execute(w, "index.html", Page{
		Title:   "Mikkeller Beer Celebration Copenhagen",
		Message: message,
		State:   state,
		Dataset: ds,
	})
}

func (r *Renderer) renderBeerlist(w io.Writer, ds *domain.Dataset, state State) error {
	state.Page = "beerlist"
	return r.execute(w, "beerlist.html", Page{
		Title:     "All Beers",
		Typeclass: "beer-list",
		State:     state,
		List:      ComputeView(ds.Beers, state),
		Dataset:   ds,
	})
}

func (r *Renderer) renderSession(w io.Writer, ds *domain.Dataset, state State) error {
	if state.Colour == "" {
		return ErrMissingColour
	}
	state.Page = "session"
	return r.execute(w, "beerlist.html", Page{
		Title:     state.Colour + " session",
		Typeclass: state.Colour + " session",
		State:     state,
		List:      ComputeView(ds.Beers, state),
		Dataset:   ds,
	})
}

// renderLoad confirms an imported snapshot and falls through to the index.
func (r *Renderer) renderLoad(w io.Writer, ds *domain.Dataset, state State) error {
	message := fmt.Sprintf("%d saved, %d tasted beers loaded", len(state.SavedIDs), len(state.TastedIDs))
	return r.renderIndex(w, ds, state, message)
}

// execute clones the parsed templates so the tset helper can close over this
// render's state, then runs the named template.
func (r *Renderer) execute(w io.Writer, name string, page Page) error {
	tmpl, err := r.templates.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone view templates: %w", err)
	}

	settings := page.State.Settings()
	fragmentPage := page.State.Page
	tmpl = tmpl.Funcs(template.FuncMap{
		"tset": func(updates string) template.URL {
			current := make(map[string]any, len(settings))
			for k, v := range settings {
				current[k] = v
			}
			return template.URL(Fragment(fragmentPage, ApplyUpdates(current, updates)))
		},
	})

	if err := tmpl.ExecuteTemplate(w, name, page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// ratingAsPercent maps the fixed 0-5 rating scale onto a width percentage.
// Accepts a pointer because live ratings are optional on the data model.
func ratingAsPercent(rating any) float64 {
	switch r := rating.(type) {
	case float64:
		return r / 5 * 100
	case *float64:
		if r == nil {
			return 0
		}
		return *r / 5 * 100
	default:
		return 0
	}
}
