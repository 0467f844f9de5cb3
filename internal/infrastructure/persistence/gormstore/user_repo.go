package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/shoptrack/internal/domain/user"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// userRepository 用户仓储
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 邮箱唯一性由唯一索引保证，冲突转换为 ErrEmailDuplicate
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Email:    u.Email,
		Password: u.Password,
		Nickname: u.Nickname,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrEmailDuplicate
		}
		return apperrors.WrapDB(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapDB(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	if err := getDB(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapDB(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	result := getDB(ctx, r.db).Model(&UserModel{ID: u.ID}).
		Select("nickname", "password", "updated_at").
		Updates(&UserModel{Nickname: u.Nickname, Password: u.Password})
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新用户失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func toUserEntity(m *UserModel) *user.User {
	return &user.User{
		ID:        m.ID,
		Email:     m.Email,
		Password:  m.Password,
		Nickname:  m.Nickname,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// roleRepository 用户角色绑定
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository 创建角色仓储
func NewRoleRepository(db *gorm.DB) user.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Grant(ctx context.Context, b *user.RoleBinding) error {
	model := &UserRoleModel{UserID: b.UserID, Role: string(b.Role)}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrRoleAlreadyGranted
		}
		return apperrors.WrapDB(err, "绑定角色失败")
	}
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	return nil
}

func (r *roleRepository) Revoke(ctx context.Context, userID uint, role user.Role) error {
	result := getDB(ctx, r.db).Where("user_id = ? AND role = ?", userID, string(role)).Delete(&UserRoleModel{})
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "撤销角色失败")
	}
	if result.RowsAffected == 0 {
		return user.ErrRoleNotGranted
	}
	return nil
}

func (r *roleRepository) ListRoles(ctx context.Context, userID uint) ([]user.Role, error) {
	var names []string
	err := getDB(ctx, r.db).Model(&UserRoleModel{}).
		Where("user_id = ?", userID).
		Order("role").
		Pluck("role", &names).Error
	if err != nil {
		return nil, apperrors.WrapDB(err, "查询用户角色失败")
	}
	roles := make([]user.Role, len(names))
	for i, n := range names {
		roles[i] = user.Role(n)
	}
	return roles, nil
}
