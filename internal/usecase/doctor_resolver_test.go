package usecase

import (
	"context"
	"testing"

	"go-clinic-workflow/config"
	"go-clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

func newTestResolver(t *testing.T, users *fakeUserRepo, autoProvision bool) (*doctorResolver, *fakeAuditService, func()) {
	t.Helper()

	db, mock := newMockDB(t)
	audit := &fakeAuditService{}
	resolver := NewDoctorResolver(db, quietLogger(), users, audit, config.ConsultationConfig{
		AutoProvisionDoctor:   autoProvision,
		DefaultDoctorEmail:    "doctor@default.com",
		DefaultDoctorName:     "Dr. Default Doctor",
		DefaultDoctorPassword: "defaultpassword",
	}).(*doctorResolver)
	resolver.hashCost = bcrypt.MinCost

	expect := func() {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("transaction expectations: %v", err)
		}
	})
	return resolver, audit, expect
}

func TestResolveDoctor_SessionIsAuthoritative(t *testing.T) {
	users := &fakeUserRepo{}
	other := users.add(entity.User{RoleID: entity.RoleIDDoctor, Email: "other@clinic.test"})
	resolver, _, _ := newTestResolver(t, users, true)
	session := uuid.New()

	got, err := resolver.ResolveDoctor(context.Background(), &session, &other.ID)
	if err != nil || got != session {
		t.Fatalf("expected session id %s, got %s (%v)", session, got, err)
	}
}

func TestResolveDoctor_ExplicitMustBeDoctor(t *testing.T) {
	users := &fakeUserRepo{}
	doctor := users.add(entity.User{RoleID: entity.RoleIDDoctor, Email: "doc@clinic.test"})
	patient := users.add(entity.User{RoleID: entity.RoleIDPatient, Email: "pat@clinic.test"})
	resolver, _, _ := newTestResolver(t, users, true)
	ctx := context.Background()

	if got, err := resolver.ResolveDoctor(ctx, nil, &doctor.ID); err != nil || got != doctor.ID {
		t.Errorf("expected explicit doctor, got %s (%v)", got, err)
	}
	if _, err := resolver.ResolveDoctor(ctx, nil, &patient.ID); err != ErrDoctorNotFound {
		t.Errorf("expected ErrDoctorNotFound for non-doctor, got %v", err)
	}
	unknown := uuid.New()
	if _, err := resolver.ResolveDoctor(ctx, nil, &unknown); err != ErrDoctorNotFound {
		t.Errorf("expected ErrDoctorNotFound for unknown id, got %v", err)
	}
}

func TestResolveDoctor_FallsBackToFirstDoctor(t *testing.T) {
	users := &fakeUserRepo{}
	users.add(entity.User{RoleID: entity.RoleIDAdmin, Email: "admin@clinic.test"})
	first := users.add(entity.User{RoleID: entity.RoleIDDoctor, Email: "first@clinic.test"})
	users.add(entity.User{RoleID: entity.RoleIDDoctor, Email: "second@clinic.test"})
	resolver, _, _ := newTestResolver(t, users, true)

	got, err := resolver.ResolveDoctor(context.Background(), nil, nil)
	if err != nil || got != first.ID {
		t.Fatalf("expected first doctor %s, got %s (%v)", first.ID, got, err)
	}
}

func TestResolveDoctor_ProvisionsDefaultOnce(t *testing.T) {
	users := &fakeUserRepo{}
	resolver, audit, expectTx := newTestResolver(t, users, true)
	ctx := context.Background()

	expectTx()
	first, err := resolver.ResolveDoctor(ctx, nil, nil)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := resolver.ResolveDoctor(ctx, nil, nil)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if first != second {
		t.Errorf("expected the same doctor twice, got %s and %s", first, second)
	}
	if users.count() != 1 {
		t.Errorf("expected one provisioned user, got %d", users.count())
	}
	if len(audit.actions) != 1 || audit.actions[0] != entity.AuditActionDoctorProvision {
		t.Errorf("expected a single provision audit entry, got %v", audit.actions)
	}

	doctor, _ := users.FindByID(nil, first)
	if doctor.Email != "doctor@default.com" || !doctor.IsDoctor() {
		t.Errorf("unexpected provisioned doctor: %+v", doctor)
	}
	if bcrypt.CompareHashAndPassword([]byte(doctor.Password), []byte("defaultpassword")) != nil {
		t.Error("password should be stored hashed")
	}
}

func TestResolveDoctor_ProvisioningDisabled(t *testing.T) {
	users := &fakeUserRepo{}
	resolver, _, _ := newTestResolver(t, users, false)

	if _, err := resolver.ResolveDoctor(context.Background(), nil, nil); err != ErrNoDoctorAvailable {
		t.Fatalf("expected ErrNoDoctorAvailable, got %v", err)
	}
	if users.count() != 0 {
		t.Error("no user should have been created")
	}
}

func TestEnsureDefaultDoctor_AdoptsConcurrentWinner(t *testing.T) {
	users := &fakeUserRepo{}
	db, mock := newMockDB(t)
	resolver := NewDoctorResolver(db, quietLogger(), users, &fakeAuditService{}, config.ConsultationConfig{
		AutoProvisionDoctor:   true,
		DefaultDoctorEmail:    "doctor@default.com",
		DefaultDoctorPassword: "defaultpassword",
	}).(*doctorResolver)
	resolver.hashCost = bcrypt.MinCost

	var winner entity.User
	users.onCreate = func(user *entity.User) error {
		winner = users.add(entity.User{RoleID: entity.RoleIDDoctor, Email: user.Email})
		return &pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"}
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	doctor, created, err := resolver.EnsureDefaultDoctor(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("losing the race must not report created")
	}
	if doctor.ID != winner.ID {
		t.Errorf("expected winner %s, got %s", winner.ID, doctor.ID)
	}
	if users.count() != 1 {
		t.Errorf("expected a single doctor, got %d", users.count())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}
