package repository

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"go-clinic-workflow/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"flu":        "flu",
		"100%":       `100\%`,
		"snake_case": `snake\_case`,
		`back\slash`: `back\\slash`,
		`%_\`:        `\%\_\\`,
	}
	for in, want := range tests {
		if got := EscapeLike(in); got != want {
			t.Errorf("EscapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAppointmentUpdateStatus_ReportsAffectedRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	affected, err := repo.UpdateStatus(db, uuid.New(), entity.AppointmentStatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if affected != 0 {
		t.Errorf("expected 0 affected rows for a missing appointment, got %d", affected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestConsultationDelete_ReportsAffectedRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsultationRepository()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "consultations"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := repo.Delete(db, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if affected != 1 {
		t.Errorf("expected 1 affected row, got %d", affected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFindLatestForPatient_OrdersBySlotWithinDay(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()
	patientID := uuid.New()
	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "appointments" WHERE patient_id = $1 AND "date" >= $2 AND "date" < $3 AND status = $4 ORDER BY "time" DESC,"appointments"."id" LIMIT $5`)).
		WithArgs(patientID, from, to, entity.AppointmentStatusConfirmed, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "date", "time", "status"}).
			AddRow(uuid.NewString(), patientID.String(), from, "14:00", "confirmed"))

	appointment, err := repo.FindLatestForPatient(db, patientID, from, to, entity.AppointmentStatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment == nil || appointment.Time != "14:00" {
		t.Errorf("expected the 14:00 slot, got %+v", appointment)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFindLatestForPatient_NoneIsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments" WHERE patient_id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	appointment, err := repo.FindLatestForPatient(db, uuid.New(), from, from.AddDate(0, 0, 1), entity.AppointmentStatusConfirmed)
	if err != nil || appointment != nil {
		t.Errorf("expected nil, nil; got %+v, %v", appointment, err)
	}
}

func TestConsultationFindOwned_DoctorScope(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsultationRepository()
	id := uuid.New()
	doctorID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "consultations" WHERE id = $1 AND doctor_id = $2 ORDER BY "consultations"."id" LIMIT $3`)).
		WithArgs(id, doctorID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// Unscoped lookups must not filter on the doctor at all.
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "consultations" WHERE id = $1 ORDER BY "consultations"."id" LIMIT $2`)).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if got, err := repo.FindOwned(db, id, &doctorID); err != nil || got != nil {
		t.Errorf("scoped: expected nil, nil; got %+v, %v", got, err)
	}
	if got, err := repo.FindByID(db, id); err != nil || got != nil {
		t.Errorf("unscoped: expected nil, nil; got %+v, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func pagedFilter(patientID, doctorID uuid.UUID) *entity.ConsultationFilter {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	return &entity.ConsultationFilter{
		PatientID: &patientID,
		DoctorID:  &doctorID,
		From:      &from,
		To:        &to,
		Search:    " a_b ",
		Limit:     10,
		Offset:    20,
	}
}

const filteredWhere = `WHERE consultations.patient_id = $1 AND consultations.doctor_id = $2 ` +
	`AND consultations.consultation_date >= $3 AND consultations.consultation_date < $4 ` +
	`AND ((consultations.motif ILIKE $5 OR consultations.history ILIKE $6 OR consultations.anamnesis ILIKE $7 ` +
	`OR consultations.clinical_exam ILIKE $8 OR consultations.plan ILIKE $9 OR consultations.treatment ILIKE $10))`

func filterArgs(filter *entity.ConsultationFilter) []driver.Value {
	args := []driver.Value{*filter.PatientID, *filter.DoctorID, *filter.From, *filter.To}
	for range entity.ConsultationSearchFields {
		args = append(args, `%a\_b%`)
	}
	return args
}

func TestConsultationFindAll_PagesWithFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsultationRepository()
	filter := pagedFilter(uuid.New(), uuid.New())

	args := append(filterArgs(filter), 10, 20)
	rows := sqlmock.NewRows([]string{"id", "appointment_id", "patient_id", "doctor_id", "motif", "fee"})
	for i := 0; i < 5; i++ {
		rows.AddRow(uuid.NewString(), uuid.NewString(), filter.PatientID.String(), filter.DoctorID.String(), "a_b", "0")
	}

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "consultations" ` + filteredWhere + ` ORDER BY consultation_date DESC LIMIT $11 OFFSET $12`)).
		WithArgs(args...).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "patients"`)).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	consultations, err := repo.FindAll(db, filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(consultations) != 5 {
		t.Errorf("expected 5 rows on the last page, got %d", len(consultations))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestConsultationFindAll_Ascending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsultationRepository()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "consultations" ORDER BY consultation_date ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.FindAll(db, &entity.ConsultationFilter{Ascending: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestConsultationCount_UsesSameFilterWithoutPaging(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsultationRepository()
	filter := pagedFilter(uuid.New(), uuid.New())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "consultations" ` + filteredWhere)).
		WithArgs(filterArgs(filter)...).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	total, err := repo.Count(db, filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 25 {
		t.Errorf("expected 25, got %d", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
