package core

import (
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// User is a registered account.
type User struct {
	Username     string    `db:"username"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	GitHubToken  string    `db:"github_token"`
	CreatedAt    time.Time `db:"created_at"`
}

// UpstreamToken returns the user's stored GitHub token, if any.
func (u *User) UpstreamToken() fn.Option[string] {
	if u.GitHubToken == "" {
		return fn.None[string]()
	}
	return fn.Some(u.GitHubToken)
}
