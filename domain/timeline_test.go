package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeline(t *testing.T) {
	tests := []struct {
		in   string
		want Timeline
	}{
		{in: "home", want: Home()},
		{in: " Local ", want: Timeline{Kind: TimelineLocal}},
		{in: "federated", want: Timeline{Kind: TimelineFederated}},
		{in: "tag:#golang, rust", want: Timeline{Kind: TimelineHashtag, Tags: []string{"golang", "rust"}}},
		{in: "account:109", want: AccountStatuses("109")},
		{in: "account-pinned:109", want: Timeline{Kind: TimelineAccountPinned, ID: "109"}},
		{in: "list:42", want: List("42")},
		{in: "bookmarks", want: Timeline{Kind: TimelineBookmarks}},
		{in: "trending", want: Timeline{Kind: TimelineTrending}},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimeline(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			again, err := ParseTimeline(got.Key())
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestParseTimeline_Invalid(t *testing.T) {
	for _, in := range []string{"", "nope", "tag:", "tag:#", "account:", "list: "} {
		_, err := ParseTimeline(in)
		if !errors.Is(err, ErrInvalidTimeline) {
			t.Fatalf("ParseTimeline(%q) error = %v, want ErrInvalidTimeline", in, err)
		}
	}
}

func TestTimelineFilterContext(t *testing.T) {
	assert.Equal(t, FilterContextHome, Home().FilterContext())
	assert.Equal(t, FilterContextHome, List("1").FilterContext())
	assert.Equal(t, FilterContextAccount, AccountStatuses("1").FilterContext())
	assert.Equal(t, FilterContextPublic, Hashtag("go").FilterContext())
	assert.Equal(t, FilterContextPublic, Timeline{Kind: TimelineBookmarks}.FilterContext())
}

func TestFilterRuleAppliesTo(t *testing.T) {
	r := FilterRule{Contexts: []FilterContext{FilterContextHome}}
	now := mustTime(t, "2026-01-02T00:00:00Z")

	assert.True(t, r.AppliesTo(FilterContextHome, now))
	assert.False(t, r.AppliesTo(FilterContextPublic, now))

	r.ExpiresAt = now
	assert.False(t, r.AppliesTo(FilterContextHome, now))
	assert.True(t, r.AppliesTo(FilterContextHome, now.Add(-1)))
}

func TestParseFilterAction(t *testing.T) {
	assert.Equal(t, FilterHide, ParseFilterAction("hide"))
	assert.Equal(t, FilterWarn, ParseFilterAction("warn"))
	assert.Equal(t, FilterShow, ParseFilterAction("blur"))
	assert.Equal(t, "warn", FilterWarn.String())
}
