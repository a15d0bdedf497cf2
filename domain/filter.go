package domain

import "time"

// FilterContext is where a filter applies.
type FilterContext string

const (
	FilterContextHome          FilterContext = "home"
	FilterContextNotifications FilterContext = "notifications"
	FilterContextPublic        FilterContext = "public"
	FilterContextThread        FilterContext = "thread"
	FilterContextAccount       FilterContext = "account"
)

// FilterAction is the outcome of evaluating a status against the user's
// filters. Actions are ordered: a stronger action wins.
type FilterAction int

const (
	FilterShow FilterAction = iota
	FilterWarn
	FilterHide
)

func (a FilterAction) String() string {
	switch a {
	case FilterWarn:
		return "warn"
	case FilterHide:
		return "hide"
	default:
		return "show"
	}
}

// ParseFilterAction maps the API's filter_action values.
func ParseFilterAction(s string) FilterAction {
	switch s {
	case "hide":
		return FilterHide
	case "warn":
		return FilterWarn
	default:
		return FilterShow
	}
}

// FilterKeyword is one keyword of a filter.
type FilterKeyword struct {
	Keyword   string
	WholeWord bool
}

// FilterRule is a user-configured filter.
type FilterRule struct {
	ID        string
	Title     string
	Contexts  []FilterContext
	Action    FilterAction
	Keywords  []FilterKeyword
	ExpiresAt time.Time // Zero means never
}

// AppliesTo reports whether the rule is active in ctx at time now.
func (r FilterRule) AppliesTo(ctx FilterContext, now time.Time) bool {
	if !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt) {
		return false
	}
	for _, c := range r.Contexts {
		if c == ctx {
			return true
		}
	}
	return false
}

// FilterResult is a server-side match attached to a status.
type FilterResult struct {
	Filter         FilterRule
	KeywordMatches []string
}

// FilterVerdict is what an evaluator decided for one status.
type FilterVerdict struct {
	Action FilterAction
	Title  string // Title of the strongest matching filter
}
