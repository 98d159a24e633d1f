package model

import "time"

type UserRole string

const (
	Guest      UserRole = "guest"
	Student    UserRole = "student"
	Teacher    UserRole = "teacher"
	Admin      UserRole = "admin"
	SuperAdmin UserRole = "super_admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case Guest, Student, Teacher, Admin, SuperAdmin:
		return true
	}
	return false
}

// User 由身份服务维护，这里只读取展示名和归属关系
// swagger:model User
type User struct {
	BaseModel
	Name               string    `gorm:"size:100;not null" json:"name"`
	Email              string    `gorm:"size:100;unique;not null" json:"email"`
	Role               UserRole  `gorm:"type:enum('guest','student','teacher','admin','super_admin');default:'student'" json:"role"`
	SchoolID           uint      `gorm:"index" json:"schoolId,omitempty"`
	CreatedByTeacherID uint      `gorm:"index" json:"createdByTeacherId,omitempty"`
	Disabled           bool      `gorm:"default:false" json:"disabled"`
	LastSeen           time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// Actor 当前请求的操作者，来自 JWT 声明
type Actor struct {
	ID                 uint     `json:"id"`
	Role               UserRole `json:"role"`
	SchoolID           uint     `json:"schoolId,omitempty"`
	CreatedByTeacherID uint     `json:"createdByTeacherId,omitempty"`
}

func GuestActor() Actor {
	return Actor{Role: Guest}
}

func (a Actor) IsAnonymous() bool {
	return a.ID == 0
}
