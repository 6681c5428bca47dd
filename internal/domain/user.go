package domain

// UserRole is the platform role of a user. Role enforcement lives outside this service.
type UserRole string

const (
	UserRoleAdmin           UserRole = "ADMIN"
	UserRoleMoonManager     UserRole = "MOON_MANAGER"
	UserRoleMoonAdvertising UserRole = "MOON_ADVERTISING"
	UserRoleMoonFeedback    UserRole = "MOON_FEEDBACK"
	UserRoleMoonSettlement  UserRole = "MOON_SETTLEMENT"
	UserRoleStar            UserRole = "STAR"
	UserRoleCounselor       UserRole = "COUNSELOR"
)

var userRoles = map[UserRole]bool{
	UserRoleAdmin:           true,
	UserRoleMoonManager:     true,
	UserRoleMoonAdvertising: true,
	UserRoleMoonFeedback:    true,
	UserRoleMoonSettlement:  true,
	UserRoleStar:            true,
	UserRoleCounselor:       true,
}

// IsValid reports whether r is one of the known roles
func (r UserRole) IsValid() bool {
	return userRoles[r]
}

// User is a platform account
type User struct {
	BaseModel
	Email    string   `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email" json:"email"`
	Name     string   `gorm:"type:varchar(100);not null" json:"name"`
	Role     UserRole `gorm:"type:varchar(30);not null;index:idx_users_role" json:"role"`
	IsActive bool     `gorm:"not null" json:"isActive"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
