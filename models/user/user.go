package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a staff member. Role drives the capability table in
// constants; the core never looks at anything else on this record.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"type:varchar(150);not null;unique" json:"username"`
	FullName string    `gorm:"type:varchar(255)" json:"full_name"`
	Role     string    `gorm:"type:varchar(20);not null;default:RECEPTIONIST" json:"role"`
	Phone    string    `gorm:"type:varchar(20)" json:"phone,omitempty"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
