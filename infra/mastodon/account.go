package mastodon

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// accountService implements app.AccountService using the Mastodon API.
type accountService struct {
	client *Client

	mu       sync.Mutex
	cachedID string // Cache the account ID after first fetch.
}

// NewAccountService creates an AccountService backed by Mastodon.
func NewAccountService(client *Client) *accountService {
	return &accountService{client: client}
}

func (s *accountService) CurrentAccountID(ctx context.Context) (string, error) {
	s.mu.Lock()
	id := s.cachedID
	s.mu.Unlock()
	if id != "" {
		return id, nil
	}

	data, err := s.client.Get(ctx, "/api/v1/accounts/verify_credentials")
	if err != nil {
		return "", fmt.Errorf("fetching account: %w", err)
	}
	var acct mastodonAccount
	if err := decode("verify credentials", data, &acct); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cachedID = acct.ID
	s.mu.Unlock()
	return acct.ID, nil
}

func (s *accountService) BlockUser(ctx context.Context, accountID string) error {
	return s.relationship(ctx, accountID, "block", "blocking user")
}

func (s *accountService) MuteUser(ctx context.Context, accountID string) error {
	return s.relationship(ctx, accountID, "mute", "muting user")
}

func (s *accountService) UnfollowUser(ctx context.Context, accountID string) error {
	return s.relationship(ctx, accountID, "unfollow", "unfollowing user")
}

func (s *accountService) relationship(ctx context.Context, accountID, action, what string) error {
	if strings.TrimSpace(accountID) == "" {
		return fmt.Errorf("invalid account id")
	}
	path := fmt.Sprintf("/api/v1/accounts/%s/%s", url.PathEscape(accountID), action)
	if _, err := s.client.Post(ctx, path, nil); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func (s *accountService) BlockDomain(ctx context.Context, domain string) error {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return fmt.Errorf("invalid domain")
	}
	form := url.Values{}
	form.Set("domain", domain)
	if _, err := s.client.Post(ctx, "/api/v1/domain_blocks", strings.NewReader(form.Encode())); err != nil {
		return fmt.Errorf("blocking domain: %w", err)
	}
	return nil
}
