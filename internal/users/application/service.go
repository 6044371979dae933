// Package application 用户应用服务
package application

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/wyfcoding/storefront/internal/users/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// AvatarView 头像视图
type AvatarView struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// ProfileView 用户资料视图
type ProfileView struct {
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Avatar   *AvatarView `json:"avatar"`
}

// ProfileInput 资料更新输入
type ProfileInput struct {
	FullName string
	Email    string
	Phone    string
}

// UsersService 用户应用服务
type UsersService struct {
	repo     domain.Repository
	sessions domain.SessionRepository
}

// NewUsersService 创建用户应用服务
func NewUsersService(repo domain.Repository, sessions domain.SessionRepository) *UsersService {
	return &UsersService{repo: repo, sessions: sessions}
}

// Register 注册账户并在当前会话上登录
func (s *UsersService) Register(ctx context.Context, session *domain.Session, name, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Profile:      &domain.Profile{FullName: name},
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}

	logger.Info(ctx, "User registered", "user_id", user.ID, "username", username)
	return s.bindSession(ctx, session, user.ID)
}

// Login 校验口令并把用户绑定到当前会话，令牌保持不变
func (s *UsersService) Login(ctx context.Context, session *domain.Session, username, password string) error {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return domain.ErrInvalidCredentials
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.ErrInvalidCredentials
	}

	logger.Info(ctx, "User logged in", "user_id", user.ID, "username", username)
	return s.bindSession(ctx, session, user.ID)
}

// Logout 解绑会话上的用户，令牌与匿名购物车保持可用
func (s *UsersService) Logout(ctx context.Context, session *domain.Session) error {
	if session.UserID != nil {
		logger.Info(ctx, "User logged out", "user_id", *session.UserID)
	}
	session.UserID = nil
	return s.sessions.Save(ctx, session)
}

// Profile 返回用户资料视图
func (s *UsersService) Profile(ctx context.Context, userID uint) (ProfileView, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	return newProfileView(profile), nil
}

// UpdateProfile 更新联系信息并返回最新资料视图
func (s *UsersService) UpdateProfile(ctx context.Context, userID uint, input ProfileInput) (ProfileView, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}

	profile.FullName = input.FullName
	profile.Email = input.Email
	profile.Phone = input.Phone
	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return ProfileView{}, err
	}
	return s.Profile(ctx, userID)
}

// ChangePassword 修改登录口令
func (s *UsersService) ChangePassword(ctx context.Context, userID uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

// UpdateAvatar 更换头像并返回最新资料视图
func (s *UsersService) UpdateAvatar(ctx context.Context, userID uint, src, alt string) (ProfileView, error) {
	if err := s.repo.SetAvatar(ctx, userID, &domain.Avatar{Src: src, Alt: alt}); err != nil {
		return ProfileView{}, err
	}
	return s.Profile(ctx, userID)
}

// ProfileInfo 供订单预填使用的资料摘要
func (s *UsersService) ProfileInfo(ctx context.Context, userID uint) (profileID uint, fullName, email, phone string, err error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return 0, "", "", "", err
	}
	return profile.ID, profile.FullName, profile.Email, profile.Phone, nil
}

func (s *UsersService) bindSession(ctx context.Context, session *domain.Session, userID uint) error {
	session.UserID = &userID
	return s.sessions.Save(ctx, session)
}

func newProfileView(profile *domain.Profile) ProfileView {
	view := ProfileView{
		FullName: profile.FullName,
		Email:    profile.Email,
		Phone:    profile.Phone,
	}
	if profile.Avatar != nil {
		view.Avatar = &AvatarView{Src: profile.Avatar.Src, Alt: profile.Avatar.Alt}
	}
	return view
}
