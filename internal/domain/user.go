package domain

type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"uniqueIndex:ux_users_username;not null" json:"username"`
	// Encoded password credential. Opaque outside the password service.
	Password string `gorm:"not null" json:"-"`
	// Position and activity stay NULL until the first location report.
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	LastActive *int64   `json:"lastActive"` // epoch millis
}

func (User) TableName() string { return "users" }
