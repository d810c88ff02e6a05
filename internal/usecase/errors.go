package usecase

import (
	"errors"
	"strings"

	"go-clinic-workflow/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDoctorNotFound             = apperror.NotFound("doctor not found or invalid")
	ErrNoDoctorAvailable          = apperror.NotFound("no doctor available")
	ErrPatientNotFound            = apperror.NotFound("patient not found")
	ErrAppointmentNotFound        = apperror.NotFound("appointment not found")
	ErrNoAppointmentToday         = apperror.NotFound("no appointment found for this patient today; specify an appointment id")
	ErrAppointmentPatientMismatch = apperror.InvalidInput("appointment does not belong to patient")
	ErrConsultationNotFound       = apperror.NotFound("consultation not found or no permission")
	ErrConsultationExists         = apperror.Conflict("consultation already exists for this appointment")
	ErrInvalidConsultationID      = apperror.InvalidInput("invalid consultation id")
	ErrNegativeFee                = apperror.InvalidInput("fee must not be negative")
	ErrPatientIDRequired          = apperror.InvalidInput("patient id is required")
	ErrInvalidDate                = apperror.InvalidInput("invalid date, use YYYY-MM-DD or RFC3339")
	ErrInvalidDateRange           = apperror.InvalidInput("end date must be after start date")
	ErrInvalidSortOrder           = apperror.InvalidInput("sort order must be asc or desc")
	ErrSearchTermRequired         = apperror.InvalidInput("search term is required")
	ErrInvalidAppointmentStatus   = apperror.InvalidInput("invalid appointment status")
	ErrInvalidAppointmentType     = apperror.InvalidInput("invalid appointment type")
	ErrInvalidAppointmentDate     = apperror.InvalidInput("invalid appointment date, use YYYY-MM-DD")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrAuditLogNotFound   = apperror.NotFound("audit log not found")
)

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
