package model

import "time"

// Customer owns vehicles checked in with the valet service.
type Customer struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Name          string    `gorm:"size:128;not null" json:"name"`
	PhoneNumber   string    `gorm:"size:32;not null;index" json:"phoneNumber"`
	Email         string    `gorm:"size:128;index" json:"email"`
	NameLowercase string    `gorm:"size:128;not null;index" json:"nameLowercase"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
}
