package models

// User represents a customer or staff account of the store.
type User struct {
	Base
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(150);not null"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password string `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Phone    string `json:"phone" gorm:"type:varchar(20)"`
	Address  string `json:"address" gorm:"type:text"`
	IsAdmin  bool   `json:"is_admin" gorm:"not null"`
}
