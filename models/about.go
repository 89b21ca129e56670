package models

import "time"

// CoreBelief is one doctrinal statement on the about page.
type CoreBelief struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Scripture   string    `gorm:"size:255" json:"scripture"`
	SortOrder   int       `gorm:"index" json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LeadershipMember is a pastor or department head on the about page.
type LeadershipMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Title     string    `gorm:"size:128" json:"title"`
	Bio       string    `gorm:"type:text" json:"bio"`
	ImageURL  string    `gorm:"size:1024" json:"imageUrl"`
	Email     string    `gorm:"size:255" json:"email"`
	SortOrder int       `gorm:"index" json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AboutSection is a free-form named block of the about page (history,
// mission, vision). Sections are upserted by name.
type AboutSection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Section   string    `gorm:"size:64;uniqueIndex;not null" json:"section"`
	Title     string    `gorm:"size:255" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
