package domain

import (
	"github.com/google/uuid"
)

// User is a read-only projection of the user table owned by the user
// service. Only the columns this service queries are mapped.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index:idx_users_tenant_id" json:"tenant_id"`
	Email    string    `gorm:"type:varchar(255)" json:"email"`
	Name     string    `gorm:"type:varchar(255)" json:"name"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
