package sqlite

import (
	"context"
	"fmt"

	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/db/queries"
)

func (s *Store) UpsertUser(ctx context.Context, user ports.User) (ports.User, error) {
	now := formatTime(s.now())
	var row queries.User
	err := retryOnBusy(ctx, func() error {
		var err error
		row, err = s.db.UpsertUser(ctx, queries.UpsertUserParams{
			GithubID:  user.GitHubID,
			Email:     user.Email,
			Nickname:  user.Nickname,
			Name:      user.Name,
			AvatarUrl: user.AvatarURL,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
	if err != nil {
		return ports.User{}, fmt.Errorf("upsert user %s: %w", user.GitHubID, err)
	}
	return userFromRow(row), nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (ports.User, error) {
	row, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		return ports.User{}, mapNotFound(err, "user %d", id)
	}
	return userFromRow(row), nil
}

func userFromRow(row queries.User) ports.User {
	return ports.User{
		ID:        row.ID,
		GitHubID:  row.GithubID,
		Email:     row.Email,
		Nickname:  row.Nickname,
		Name:      row.Name,
		AvatarURL: row.AvatarUrl,
	}
}

var _ ports.UserStore = (*Store)(nil)
