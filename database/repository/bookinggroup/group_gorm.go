package bookinggroup

import (
	"gorm.io/gorm"
)

// GormBookingGroupRepo is the Postgres-backed implementation.
type GormBookingGroupRepo struct {
	db *gorm.DB
}

// NewGormBookingGroupRepo creates a repository bound to the given handle.
func NewGormBookingGroupRepo(db *gorm.DB) *GormBookingGroupRepo {
	return &GormBookingGroupRepo{db: db}
}
