package domain

// ViewState is client-local presentation state of one status. It is never
// sent to or received from the network.
type ViewState struct {
	ContentShown     bool // Sensitive media revealed
	Expanded         bool // Content warning opened
	ContentCollapsed bool // Long content folded
}

// DisplayPreferences drive the default ViewState of fetched statuses and
// the Home-only boost and reply suppression.
type DisplayPreferences struct {
	AlwaysShowSensitiveMedia bool
	AlwaysOpenSpoilers       bool
	HideBoosts               bool
	HideReplies              bool
}

// DefaultViewState derives the overlay for a status that has no override.
func DefaultViewState(s Status, prefs DisplayPreferences) ViewState {
	return ViewState{
		ContentShown:     prefs.AlwaysShowSensitiveMedia || !s.Actionable().Sensitive,
		Expanded:         prefs.AlwaysOpenSpoilers,
		ContentCollapsed: true,
	}
}

// StatusViewData is a status combined with its view state and filter outcome.
type StatusViewData struct {
	Status Status
	View   ViewState
	Filter FilterAction
	// FilterTitle names the matching filter when Filter is FilterWarn.
	FilterTitle string
}

// ID is the outer status id.
func (v StatusViewData) ID() string { return v.Status.ID }

// Page is one batch of statuses plus the cursors around it.
// Keys are only valid for the timeline and session that produced them.
type Page struct {
	Items   []StatusViewData
	PrevKey string
	NextKey string
}
