package model

import "time"

// UsersCollection is the document collection holding user profiles
const UsersCollection = "users"

// UserProfile is the profile document written once at registration time.
// The UID is the document key and is not part of the document body.
type UserProfile struct {
	UID         AccountUID `json:"-"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	CreatedAt   time.Time  `json:"createdAt"`
}
