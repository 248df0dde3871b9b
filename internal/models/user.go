package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SocialLinks struct {
	Twitter   string `bson:"twitter" json:"twitter"`
	Instagram string `bson:"instagram" json:"instagram"`
	Facebook  string `bson:"facebook" json:"facebook"`
}

type Preferences struct {
	EmailNotifications bool `bson:"emailNotifications" json:"emailNotifications"`
	DarkMode           bool `bson:"darkMode" json:"darkMode"`
}

// User is an account document. The reset fields are only present while a
// password reset is pending.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password" json:"-"`
	ResetTokenHash string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetExpiresAt *time.Time         `bson:"resetPasswordExpires,omitempty" json:"-"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
	Bio            string             `bson:"bio" json:"bio"`
	Location       string             `bson:"location" json:"location"`
	PhoneNumber    string             `bson:"phoneNumber" json:"phoneNumber"`
	SocialLinks    SocialLinks        `bson:"socialLinks" json:"socialLinks"`
	Preferences    Preferences        `bson:"preferences" json:"preferences"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	LastUpdated    time.Time          `bson:"lastUpdated" json:"lastUpdated"`
}

// HasPendingReset reports whether a reset credential is stored.
func (u *User) HasPendingReset() bool {
	return u.ResetTokenHash != "" && u.ResetExpiresAt != nil
}

// ProfileUpdate carries the optional fields of a profile edit. Nil means
// "leave unchanged".
type ProfileUpdate struct {
	Username           *string
	Bio                *string
	Location           *string
	PhoneNumber        *string
	Twitter            *string
	Instagram          *string
	Facebook           *string
	EmailNotifications *bool
	DarkMode           *bool
}
