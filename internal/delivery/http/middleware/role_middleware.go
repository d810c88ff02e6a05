package middleware

import (
	"net/http"

	"go-clinic-workflow/internal/domain/entity"
	"go-clinic-workflow/pkg/response"
)

// RequireRole lets the request through when the session role is one of allowedRoleIDs.
// Must run after Authenticate.
func RequireRole(allowedRoleIDs ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, allowedRoleID := range allowedRoleIDs {
				if roleID == allowedRoleID {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

// RequireStaff admits admins and doctors, who manage appointments.
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDDoctor)(next)
}
