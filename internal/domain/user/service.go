package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// Service 用户领域服务
type Service interface {
	// Register 注册并绑定唯一的 customer 角色（同一事务）
	Register(ctx context.Context, email, password, nickname string) (*User, error)

	// Login 校验邮箱和密码
	Login(ctx context.Context, email, password string) (*User, error)

	// ValidatePassword 校验明文与哈希
	ValidatePassword(hashedPassword, plainPassword string) error

	// Roles 用户当前角色
	Roles(ctx context.Context, userID uint) ([]Role, error)

	GrantRole(ctx context.Context, userID uint, role Role) (*RoleBinding, error)

	// RevokeRole customer 角色不可撤销
	RevokeRole(ctx context.Context, userID uint, role Role) error
}

type service struct {
	repo       Repository
	roles      RoleRepository
	tx         Transactor
	bcryptCost int
}

// NewService 创建用户服务；cost<=0 时使用 bcrypt.DefaultCost
func NewService(repo Repository, roles RoleRepository, tx Transactor, bcryptCost int) Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &service{repo: repo, roles: roles, tx: tx, bcryptCost: bcryptCost}
}

// Register 用户注册
// 邮箱唯一性由数据库唯一索引保证，Repository 转换为 ErrEmailDuplicate
func (s *service) Register(ctx context.Context, email, password, nickname string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(nickname); n < 2 || n > 50 {
		return nil, ErrInvalidNickname
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewUser(email, string(hashed), nickname)
	err = s.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, u); err != nil {
			return err
		}
		return s.roles.Grant(txCtx, &RoleBinding{UserID: u.ID, Role: RoleCustomer, CreatedAt: time.Now()})
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

func (s *service) Roles(ctx context.Context, userID uint) ([]Role, error) {
	return s.roles.ListRoles(ctx, userID)
}

func (s *service) GrantRole(ctx context.Context, userID uint, role Role) (*RoleBinding, error) {
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	b := &RoleBinding{UserID: userID, Role: role, CreatedAt: time.Now()}
	if err := s.roles.Grant(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) RevokeRole(ctx context.Context, userID uint, role Role) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	if role == RoleCustomer {
		return ErrRoleNotRevocable
	}
	return s.roles.Revoke(ctx, userID, role)
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	letterRe     = regexp.MustCompile(`[a-zA-Z]`)
	digitRe      = regexp.MustCompile(`[0-9]`)
)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// validatePasswordStrength 8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !letterRe.MatchString(password) || !digitRe.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
