package mastodon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/CrestNiraj12/fedtimeline/domain"
)

// postService implements app.StatusActions using the Mastodon API.
type postService struct {
	client *Client
}

// NewPostService creates a StatusActions backed by Mastodon.
func NewPostService(client *Client) *postService {
	return &postService{client: client}
}

func (s *postService) Favourite(ctx context.Context, id string, on bool) (domain.Status, error) {
	return s.toggle(ctx, id, on, "favourite", "unfavourite")
}

func (s *postService) Bookmark(ctx context.Context, id string, on bool) (domain.Status, error) {
	return s.toggle(ctx, id, on, "bookmark", "unbookmark")
}

// Reblog returns the boosted status itself, not the reblog wrapper the API
// responds with.
func (s *postService) Reblog(ctx context.Context, id string, on bool) (domain.Status, error) {
	st, err := s.toggle(ctx, id, on, "reblog", "unreblog")
	if err != nil {
		return domain.Status{}, err
	}
	return st.Actionable(), nil
}

func (s *postService) Pin(ctx context.Context, id string, on bool) (domain.Status, error) {
	return s.toggle(ctx, id, on, "pin", "unpin")
}

func (s *postService) toggle(ctx context.Context, id string, on bool, do, undo string) (domain.Status, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Status{}, fmt.Errorf("invalid status id")
	}
	action := undo
	if on {
		action = do
	}
	path := fmt.Sprintf("/api/v1/statuses/%s/%s", url.PathEscape(id), action)
	data, err := s.client.Post(ctx, path, nil)
	if err != nil {
		return domain.Status{}, fmt.Errorf("%s status: %w", action, err)
	}
	var st mastodonStatus
	if err := decode(action, data, &st); err != nil {
		return domain.Status{}, err
	}
	return mapStatus(st), nil
}

func (s *postService) VoteInPoll(ctx context.Context, pollID string, choices []int) (domain.Poll, error) {
	if strings.TrimSpace(pollID) == "" {
		return domain.Poll{}, fmt.Errorf("invalid poll id")
	}
	if len(choices) == 0 {
		return domain.Poll{}, fmt.Errorf("no poll choices")
	}
	form := url.Values{}
	for _, c := range choices {
		form.Add("choices[]", strconv.Itoa(c))
	}
	path := fmt.Sprintf("/api/v1/polls/%s/votes", url.PathEscape(pollID))
	data, err := s.client.Post(ctx, path, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Poll{}, fmt.Errorf("voting in poll: %w", err)
	}
	var p mastodonPoll
	if err := decode("vote", data, &p); err != nil {
		return domain.Poll{}, err
	}
	return mapPoll(p), nil
}

func (s *postService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("invalid status id")
	}
	path := fmt.Sprintf("/api/v1/statuses/%s", url.PathEscape(id))
	if _, err := s.client.Delete(ctx, path); err != nil {
		return fmt.Errorf("deleting status: %w", err)
	}
	return nil
}
