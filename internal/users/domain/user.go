// Package domain 用户与会话领域模型
package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// User 登录账户
type User struct {
	gorm.Model
	Username     string   `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	PasswordHash string   `gorm:"type:varchar(128);not null" json:"-"`
	Profile      *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// Avatar 头像
type Avatar struct {
	gorm.Model
	Src string `gorm:"type:varchar(255);not null" json:"src"`
	Alt string `gorm:"type:varchar(255)" json:"alt"`
}

// TableName 指定表名
func (Avatar) TableName() string {
	return "avatars"
}

// Profile 用户资料，与账户一一对应，用于下单时预填联系信息
type Profile struct {
	gorm.Model
	UserID   uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName string  `gorm:"type:varchar(255)" json:"full_name"`
	Email    string  `gorm:"type:varchar(255)" json:"email"`
	Phone    string  `gorm:"type:varchar(32)" json:"phone"`
	AvatarID *uint   `json:"avatar_id"`
	Avatar   *Avatar `gorm:"foreignKey:AvatarID" json:"avatar,omitempty"`
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}

// Session 会话记录，首次访问即签发令牌；UserID 为空表示匿名会话
type Session struct {
	Token     string    `json:"token"`
	UserID    *uint     `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Authenticated 会话是否已绑定登录用户
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != nil
}

// Repository 用户仓储接口
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	GetProfileByUserID(ctx context.Context, userID uint) (*Profile, error)
	UpdateProfile(ctx context.Context, profile *Profile) error
	SetAvatar(ctx context.Context, userID uint, avatar *Avatar) error
}

// SessionRepository 会话存储接口，按令牌显式查取
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
