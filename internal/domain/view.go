package domain

// Phase is the lifecycle position of a widget.
type Phase string

// Widget phases.
const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// Greeting is shown before the first quote arrives.
const Greeting = "Welcome to the Quote Collection!"

// ViewState is the single record a widget is rendered from.
//
// Quote and Author are empty or populated together. In PhaseFailed they hold
// FallbackQuote and FallbackAuthor and Color is ErrorColor.
type ViewState struct {
	Category      Category      `json:"category"`
	Quote         string        `json:"quote"`
	Author        string        `json:"author"`
	Color         string        `json:"color"`
	PreviousColor string        `json:"previousColor"`
	IsLoading     bool          `json:"isLoading"`
	Error         string        `json:"error,omitempty"`
	Phase         Phase         `json:"phase"`
	ShareTargets  []ShareTarget `json:"shareTargets"`
}

// NewViewState returns the idle state for a freshly mounted widget.
func NewViewState(category Category) ViewState {
	return ViewState{
		Category: category,
		Phase:    PhaseIdle,
	}
}

// HasQuote reports whether there is a quote or fallback to render.
func (v *ViewState) HasQuote() bool {
	return v.Quote != "" && v.Author != ""
}

// Failed reports whether the last fetch ended in the error view.
func (v *ViewState) Failed() bool {
	return v.Error != ""
}

// Clone returns a copy that shares no slices with v.
func (v *ViewState) Clone() ViewState {
	out := *v
	if v.ShareTargets != nil {
		out.ShareTargets = make([]ShareTarget, len(v.ShareTargets))
		copy(out.ShareTargets, v.ShareTargets)
	}
	return out
}
