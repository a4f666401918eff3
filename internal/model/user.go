package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Subscription string    `db:"subscription"`
	AvatarURL    string    `db:"avatar_url"`
	Verified     bool      `db:"verified"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// PublicUser is the subset of a user record that is safe to return to clients.
type PublicUser struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
	AvatarURL    string `json:"avatarURL,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		Email:        u.Email,
		Subscription: u.Subscription,
	}
}

// PublicWithAvatar is Public plus the avatar URL, returned on signup.
func (u *User) PublicWithAvatar() PublicUser {
	p := u.Public()
	p.AvatarURL = u.AvatarURL
	return p
}
