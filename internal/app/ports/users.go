package ports

import "context"

// User is a locally known account.
type User struct {
	ID        int64
	GitHubID  string
	Email     string
	Nickname  string
	Name      string
	AvatarURL string
}

// UserStore upserts identities from the OAuth provider.
type UserStore interface {
	UpsertUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
}
