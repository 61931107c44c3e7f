package users

import "time"

// User is a registered account. Email is the unique natural key. The
// credential hash never crosses the serialization boundary.
type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Email        string    `gorm:"column:email;size:320;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"column:name;size:190;not null" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;size:190" json:"-"`
	GoogleID     string    `gorm:"column:google_id;size:190" json:"googleId,omitempty"`
	AvatarURL    string    `gorm:"column:avatar_url;size:512" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (User) TableName() string {
	return "users"
}
