package domain

import "time"

// User is an application account with its custodial wallet binding.
// WalletName is a pure function of the user id; ReceiveAddress is the
// authoritative receiving address once generated (read-before-generate).
type User struct {
	ID             string    `bson:"_id" json:"id"`
	UID            string    `bson:"uid" json:"uid"`
	Fullname       string    `bson:"fullname" json:"fullname"`
	Email          string    `bson:"email" json:"email"`
	PasswordHash   string    `bson:"password_hash" json:"-"`
	ProfileImage   string    `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	WalletName     string    `bson:"wallet_name,omitempty" json:"-"`
	ReceiveAddress string    `bson:"receive_address,omitempty" json:"receive_address,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// Principal is the authenticated identity produced once at the auth
// boundary and passed explicitly into core calls.
type Principal struct {
	ID    string
	UID   string
	Email string
}
