package reset

import "context"

// ChallengeRepository stores pending reset codes keyed by email. Entries
// expire on their own; Save on an existing email overwrites the previous
// code and restarts the expiry clock.
type ChallengeRepository interface {
	// Find returns the live code for the email, or CodeNotFound when no
	// challenge is pending.
	Find(ctx context.Context, email string) (string, error)
	Save(ctx context.Context, email, code string) error
	Delete(ctx context.Context, email string) error
}
