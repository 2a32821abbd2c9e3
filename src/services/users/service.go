package users

import (
	"context"
	"errors"
	"strings"
	"time"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type UpdateProfileInput struct {
	FullName string                  `json:"fullName"`
	Academic *models.AcademicProfile `json:"academic"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type UpdateRoleInput struct {
	Role     string                  `json:"role" validate:"required,oneof=student teacher admin"`
	Academic *models.AcademicProfile `json:"academic"`
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return u, nil
}

// UpdateProfile แก้ชื่อ และข้อมูลการศึกษา (เฉพาะนิสิต)
func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, in UpdateProfileInput) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.FullName); name != "" {
		u.FullName = name
	}
	if in.Academic != nil {
		if !u.IsStudent() {
			return nil, utils.NewValidationError("%s", models.ErrStaffWithAcademic.Error())
		}
		if err := u.ChangeRole(models.RoleStudent, in.Academic); err != nil {
			return nil, utils.NewValidationError("%s", err.Error())
		}
	}
	u.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, u); err != nil {
		return nil, mapStoreError(err)
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id primitive.ObjectID, in ChangePasswordInput) error {
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.OldPassword)) != nil {
		return utils.NewUnauthorizedError("Old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.NewInternalError("Failed to hash password")
	}
	u.Password = string(hash)
	u.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, u); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// UpdateRole is admin only; the controller route enforces that.
func (s *Service) UpdateRole(ctx context.Context, id primitive.ObjectID, in UpdateRoleInput) (*models.User, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.ChangeRole(in.Role, in.Academic); err != nil {
		return nil, utils.NewValidationError("%s", err.Error())
	}
	if err := s.store.Update(ctx, u); err != nil {
		return nil, mapStoreError(err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, role string, p models.PaginationParams) (*models.PaginatedResponse, error) {
	if role != "" && !models.IsValidRole(role) {
		return nil, utils.NewValidationError("%s", models.ErrUnknownRole.Error())
	}
	p = p.Normalize()
	list, total, err := s.store.List(ctx, role, p)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return models.NewPaginatedResponse(list, total, p), nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, DB.ErrNotFound):
		return utils.NewNotFoundError("User")
	case errors.Is(err, DB.ErrDuplicateKey):
		return utils.NewConflictError("User with this email or username already exists")
	default:
		return err
	}
}
