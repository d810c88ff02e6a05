package converter

import (
	"go-clinic-workflow/internal/delivery/dto"
	"go-clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      roleName(user),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// roleName falls back to the role constants when Role is not preloaded
func roleName(user *entity.User) string {
	if user.Role.RoleName != "" {
		return user.Role.RoleName
	}
	switch user.RoleID {
	case entity.RoleIDAdmin:
		return entity.RoleAdmin
	case entity.RoleIDDoctor:
		return entity.RoleDoctor
	case entity.RoleIDPatient:
		return entity.RolePatient
	}
	return ""
}

// UserToDoctorSummary returns nil when the doctor relation was not loaded
func UserToDoctorSummary(user *entity.User) *dto.DoctorSummary {
	if user == nil || user.ID == uuid.Nil {
		return nil
	}
	return &dto.DoctorSummary{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}
}
