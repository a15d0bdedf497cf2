package timeline

import (
	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/eventbus"
	"github.com/CrestNiraj12/fedtimeline/infra/logger"
)

// Subscribe routes bus events to c for the lifetime of the session. Call
// Unsubscribe on the result when the session ends.
func Subscribe(bus *eventbus.Bus, c *Cache) eventbus.Subscription {
	return bus.Subscribe(func(env eventbus.Envelope) {
		if HandleEvent(c, env.Event) {
			c.log.Debug("timeline updated from event",
				logger.String("timeline", c.timeline.Key()),
				logger.String("event", env.Event.Name()),
				logger.String("id", env.ID))
		}
	})
}

// HandleEvent applies ev to c and reports whether the cache was touched.
// Every mutation sets absolute values, so applying the same event twice
// leaves the cache as applying it once.
func HandleEvent(c *Cache, ev eventbus.Event) bool {
	switch ev := ev.(type) {
	case eventbus.FavouriteEvent:
		return c.updateAndInvalidate(ev.StatusID, func(s domain.Status) domain.Status {
			s.FavouritesCount = adjustCount(s.FavouritesCount, s.Favourited, ev.Favourited)
			s.Favourited = ev.Favourited
			return s
		})
	case eventbus.ReblogEvent:
		return c.updateAndInvalidate(ev.StatusID, func(s domain.Status) domain.Status {
			s.ReblogsCount = adjustCount(s.ReblogsCount, s.Reblogged, ev.Reblogged)
			s.Reblogged = ev.Reblogged
			return s
		})
	case eventbus.BookmarkEvent:
		return c.updateAndInvalidate(ev.StatusID, func(s domain.Status) domain.Status {
			s.Bookmarked = ev.Bookmarked
			return s
		})
	case eventbus.PinEvent:
		return c.updateAndInvalidate(ev.StatusID, func(s domain.Status) domain.Status {
			s.Pinned = ev.Pinned
			return s
		})
	case eventbus.PollVoteEvent:
		return c.updateAndInvalidate(ev.StatusID, func(s domain.Status) domain.Status {
			p := ev.Poll.Clone()
			s.Poll = &p
			return s
		})
	case eventbus.StatusEditedEvent:
		edited := ev.Status
		return c.updateAndInvalidate(edited.ID, func(domain.Status) domain.Status { return edited.Clone() })
	case eventbus.StatusDeletedEvent:
		return c.RemoveItem(ev.StatusID) > 0
	case eventbus.BlockEvent:
		if c.isAccountTimeline() {
			return false
		}
		return c.RemoveAllByAccountID(ev.AccountID) > 0
	case eventbus.MuteEvent:
		if c.isAccountTimeline() {
			return false
		}
		return c.RemoveAllByAccountID(ev.AccountID) > 0
	case eventbus.DomainMuteEvent:
		return c.RemoveAllByInstance(ev.Instance) > 0
	case eventbus.UnfollowEvent:
		if c.timeline.Kind != domain.TimelineHome {
			return false
		}
		return c.RemoveAllByAccountID(ev.AccountID) > 0
	case eventbus.PreferencesChangedEvent:
		c.SetPreferences(ev.Preferences)
		return true
	case eventbus.FiltersChangedEvent:
		c.Invalidate()
		return true
	}
	return false
}

func (c *Cache) updateAndInvalidate(id string, fn func(domain.Status) domain.Status) bool {
	if c.UpdateActionableItem(id, fn) == 0 {
		return false
	}
	c.Invalidate()
	return true
}

// isAccountTimeline reports whether c shows one account's statuses, where
// blocking or muting that account must not empty the view.
func (c *Cache) isAccountTimeline() bool {
	switch c.timeline.Kind {
	case domain.TimelineAccount, domain.TimelineAccountWithReplies, domain.TimelineAccountPinned:
		return true
	}
	return false
}

// adjustCount moves a counter when a flag flips and leaves it alone when
// the flag already had the target value.
func adjustCount(n int, was, now bool) int {
	switch {
	case !was && now:
		return n + 1
	case was && !now && n > 0:
		return n - 1
	}
	return n
}
