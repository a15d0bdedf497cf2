package app

import "context"

// AccountService covers the account-level actions that remove content from
// timelines.
type AccountService interface {
	// CurrentAccountID returns the account ID of the authenticated user.
	CurrentAccountID(ctx context.Context) (string, error)

	// BlockUser blocks a user by account ID.
	BlockUser(ctx context.Context, accountID string) error

	// MuteUser mutes a user by account ID.
	MuteUser(ctx context.Context, accountID string) error

	// UnfollowUser stops following a user.
	UnfollowUser(ctx context.Context, accountID string) error

	// BlockDomain hides everything from a federated instance.
	BlockDomain(ctx context.Context, domain string) error
}
