package domain

import "time"

// Contact links an owner to another user. The (owner, contact) pair is
// unique via a compound index in the store.
type Contact struct {
	ID        string    `bson:"_id" json:"id"`
	OwnerID   string    `bson:"owner_id" json:"owner_id"`
	ContactID string    `bson:"contact_id" json:"contact_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ContactView is a contact joined with the referenced user's profile.
type ContactView struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Fullname       string    `json:"fullname"`
	Email          string    `json:"email"`
	ProfileImage   string    `json:"profile_image,omitempty"`
	ReceiveAddress string    `json:"receive_address,omitempty"`
	AddedAt        time.Time `json:"added_at"`
}
