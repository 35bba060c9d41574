package session

// Store is the single source of truth for the current authentication token.
//
// SetToken and Clear report persistence failures but always update the
// in-memory value first, so a session stays usable for the lifetime of the
// process even when durable storage is unavailable.
type Store interface {
	// Token returns the current token and whether one is present.
	Token() (string, bool)

	// SetToken persists the token and notifies subscribers.
	SetToken(token string) error

	// Clear removes the persisted token and notifies subscribers.
	Clear() error

	// Subscribe registers fn to be called on every token change, including
	// changes originating outside this process. The returned function
	// removes the subscription.
	Subscribe(fn func(token string, ok bool)) (unsubscribe func())
}
