package timeline

import (
	"context"
	"fmt"

	"github.com/CrestNiraj12/fedtimeline/app"
	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/eventbus"
	"github.com/CrestNiraj12/fedtimeline/infra/logger"
)

// Actions performs user actions against one cache. Engagement actions are
// optimistic: the cache changes first and is rolled back if the remote
// call fails.
type Actions struct {
	cache    *Cache
	statuses app.StatusActions
	accounts app.AccountService
	bus      *eventbus.Bus
	log      logger.Logger
}

// NewActions binds actions to c. bus may be nil when no other session
// needs to hear about changes.
func NewActions(c *Cache, statuses app.StatusActions, accounts app.AccountService, bus *eventbus.Bus) *Actions {
	return &Actions{cache: c, statuses: statuses, accounts: accounts, bus: bus, log: c.log}
}

func (a *Actions) Favourite(ctx context.Context, id string, on bool) error {
	return a.engage(ctx, "favourite", id, on,
		func(s domain.Status) bool { return s.Favourited },
		func(target string, v bool) eventbus.Event {
			return eventbus.FavouriteEvent{StatusID: target, Favourited: v}
		},
		func(ctx context.Context, target string) error {
			_, err := a.statuses.Favourite(ctx, target, on)
			return err
		})
}

func (a *Actions) Bookmark(ctx context.Context, id string, on bool) error {
	return a.engage(ctx, "bookmark", id, on,
		func(s domain.Status) bool { return s.Bookmarked },
		func(target string, v bool) eventbus.Event {
			return eventbus.BookmarkEvent{StatusID: target, Bookmarked: v}
		},
		func(ctx context.Context, target string) error {
			_, err := a.statuses.Bookmark(ctx, target, on)
			return err
		})
}

func (a *Actions) Reblog(ctx context.Context, id string, on bool) error {
	return a.engage(ctx, "reblog", id, on,
		func(s domain.Status) bool { return s.Reblogged },
		func(target string, v bool) eventbus.Event {
			return eventbus.ReblogEvent{StatusID: target, Reblogged: v}
		},
		func(ctx context.Context, target string) error {
			_, err := a.statuses.Reblog(ctx, target, on)
			return err
		})
}

func (a *Actions) Pin(ctx context.Context, id string, on bool) error {
	return a.engage(ctx, "pin", id, on,
		func(s domain.Status) bool { return s.Pinned },
		func(target string, v bool) eventbus.Event {
			return eventbus.PinEvent{StatusID: target, Pinned: v}
		},
		func(ctx context.Context, target string) error {
			_, err := a.statuses.Pin(ctx, target, on)
			return err
		})
}

func (a *Actions) engage(
	ctx context.Context,
	op, id string,
	on bool,
	flag func(domain.Status) bool,
	event func(target string, v bool) eventbus.Event,
	remote func(ctx context.Context, target string) error,
) error {
	st, ok := a.cache.Item(id)
	if !ok {
		return fmt.Errorf("%s %s: %w", op, id, domain.ErrNotFound)
	}
	target := st.Actionable()
	was := flag(target)

	HandleEvent(a.cache, event(target.ID, on))
	if err := remote(ctx, target.ID); err != nil {
		HandleEvent(a.cache, event(target.ID, was))
		a.log.Warn("action failed, rolled back",
			logger.String("action", op),
			logger.String("status", target.ID),
			logger.Error(err))
		return fmt.Errorf("%s %s: %w", op, target.ID, err)
	}
	a.publish(event(target.ID, on))
	return nil
}

// VoteInPoll records choices on the poll of status id. The optimistic
// tally is replaced by the server's poll once it answers.
func (a *Actions) VoteInPoll(ctx context.Context, id string, choices []int) error {
	st, ok := a.cache.Item(id)
	if !ok {
		return fmt.Errorf("vote %s: %w", id, domain.ErrNotFound)
	}
	target := st.Actionable()
	if target.Poll == nil {
		return fmt.Errorf("vote %s: status has no poll", target.ID)
	}
	prev := target.Poll.Clone()

	HandleEvent(a.cache, eventbus.PollVoteEvent{StatusID: target.ID, Poll: prev.Vote(choices)})
	poll, err := a.statuses.VoteInPoll(ctx, prev.ID, choices)
	if err != nil {
		HandleEvent(a.cache, eventbus.PollVoteEvent{StatusID: target.ID, Poll: prev})
		a.log.Warn("poll vote failed, rolled back", logger.String("status", target.ID), logger.Error(err))
		return fmt.Errorf("vote %s: %w", target.ID, err)
	}
	ev := eventbus.PollVoteEvent{StatusID: target.ID, Poll: poll}
	HandleEvent(a.cache, ev)
	a.publish(ev)
	return nil
}

// Delete removes one of the user's statuses. The item leaves the cache
// only after the server confirmed the deletion.
func (a *Actions) Delete(ctx context.Context, id string) error {
	if err := a.statuses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	a.apply(eventbus.StatusDeletedEvent{StatusID: id})
	return nil
}

// BlockAccount blocks accountID and drops its statuses.
func (a *Actions) BlockAccount(ctx context.Context, accountID string) error {
	if err := a.accounts.BlockUser(ctx, accountID); err != nil {
		return fmt.Errorf("block %s: %w", accountID, err)
	}
	a.apply(eventbus.BlockEvent{AccountID: accountID})
	return nil
}

// MuteAccount mutes accountID and drops its statuses.
func (a *Actions) MuteAccount(ctx context.Context, accountID string) error {
	if err := a.accounts.MuteUser(ctx, accountID); err != nil {
		return fmt.Errorf("mute %s: %w", accountID, err)
	}
	a.apply(eventbus.MuteEvent{AccountID: accountID})
	return nil
}

// UnfollowAccount stops following accountID; Home drops its statuses.
func (a *Actions) UnfollowAccount(ctx context.Context, accountID string) error {
	if err := a.accounts.UnfollowUser(ctx, accountID); err != nil {
		return fmt.Errorf("unfollow %s: %w", accountID, err)
	}
	a.apply(eventbus.UnfollowEvent{AccountID: accountID})
	return nil
}

// MuteDomain hides a whole instance and drops its statuses.
func (a *Actions) MuteDomain(ctx context.Context, instance string) error {
	if err := a.accounts.BlockDomain(ctx, instance); err != nil {
		return fmt.Errorf("mute domain %s: %w", instance, err)
	}
	a.apply(eventbus.DomainMuteEvent{Instance: instance})
	return nil
}

// SetContentShown reveals or hides sensitive media of status id.
func (a *Actions) SetContentShown(id string, shown bool) error {
	return a.setView(id, func(v *domain.ViewState) { v.ContentShown = shown })
}

// SetExpanded opens or closes the content warning of status id.
func (a *Actions) SetExpanded(id string, expanded bool) error {
	return a.setView(id, func(v *domain.ViewState) { v.Expanded = expanded })
}

// SetContentCollapsed folds or unfolds long content of status id.
func (a *Actions) SetContentCollapsed(id string, collapsed bool) error {
	return a.setView(id, func(v *domain.ViewState) { v.ContentCollapsed = collapsed })
}

// setView writes a full override built from the current view state, keyed
// by the cached status id. The status part of an existing override is
// carried forward.
func (a *Actions) setView(id string, mutate func(*domain.ViewState)) error {
	view, ok := a.cache.ViewState(id)
	if !ok {
		return fmt.Errorf("view %s: %w", id, domain.ErrNotFound)
	}
	if st, ok := a.cache.Item(id); ok {
		id = st.ID
	}
	mutate(&view)
	o, _ := a.cache.Overrides().Get(id)
	o.View = &view
	a.cache.Override(id, o)
	return nil
}

// apply changes the local cache right away and tells other sessions.
// The cache may see the event twice when it is also subscribed; handling
// is idempotent.
func (a *Actions) apply(ev eventbus.Event) {
	HandleEvent(a.cache, ev)
	a.publish(ev)
}

func (a *Actions) publish(ev eventbus.Event) {
	if a.bus != nil {
		a.bus.Publish(ev)
	}
}
