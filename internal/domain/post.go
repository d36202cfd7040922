package domain

import "time"

type Post struct {
	ID      int64  `json:"id" gorm:"primaryKey"`
	Title   string `json:"title" gorm:"index;not null"`
	Content string `json:"content"`

	OwnerID int64 `json:"owner_id" gorm:"index;not null"`
	Owner   User  `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
