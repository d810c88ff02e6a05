package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go-clinic-workflow/internal/domain/entity"
	"go-clinic-workflow/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB returns a gorm handle whose transaction boundaries are observed
// by sqlmock. Repositories are faked, so only BEGIN/COMMIT/ROLLBACK reach it.
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

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// --- users ---

type fakeUserRepo struct {
	mu       sync.Mutex
	users    []entity.User
	onCreate func(user *entity.User) error
}

func (r *fakeUserRepo) add(user entity.User) entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users = append(r.users, user)
	return user
}

func (r *fakeUserRepo) Create(db *gorm.DB, user *entity.User) error {
	if r.onCreate != nil {
		if err := r.onCreate(user); err != nil {
			return err
		}
	}
	*user = r.add(*user)
	return nil
}

func (r *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].Email == email {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindFirstByRole(db *gorm.DB, roleID int) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].RoleID == roleID {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// --- patients ---

type fakePatientRepo struct {
	patients map[uuid.UUID]entity.Patient
}

func (r *fakePatientRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// --- appointments ---

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*entity.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*entity.Appointment)}
}

func (r *fakeAppointmentRepo) add(a entity.Appointment) *entity.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.appointments[a.ID] = &a
	return &a
}

func (r *fakeAppointmentRepo) status(id uuid.UUID) entity.AppointmentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.appointments[id]; ok {
		return a.Status
	}
	return ""
}

func (r *fakeAppointmentRepo) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.appointments, id)
}

func (r *fakeAppointmentRepo) Create(db *gorm.DB, appointment *entity.Appointment) error {
	*appointment = *r.add(*appointment)
	return nil
}

func (r *fakeAppointmentRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAppointmentRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindLatestForPatient(db *gorm.DB, patientID uuid.UUID, from, to time.Time, status entity.AppointmentStatus) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *entity.Appointment
	for _, a := range r.appointments {
		if a.PatientID != patientID || a.Status != status {
			continue
		}
		if a.Date.Before(from) || !a.Date.Before(to) {
			continue
		}
		if best == nil || a.Time > best.Time {
			best = a
		}
	}
	if best == nil {
		return nil, nil
	}
	copied := *best
	return &copied, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return 0, nil
	}
	a.Status = status
	return 1, nil
}

// --- consultations ---

type fakeConsultationRepo struct {
	mu            sync.Mutex
	consultations map[uuid.UUID]*entity.Consultation
}

func newFakeConsultationRepo() *fakeConsultationRepo {
	return &fakeConsultationRepo{consultations: make(map[uuid.UUID]*entity.Consultation)}
}

func (r *fakeConsultationRepo) add(c entity.Consultation) *entity.Consultation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.consultations[c.ID] = &c
	return &c
}

func (r *fakeConsultationRepo) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.consultations)
}

func (r *fakeConsultationRepo) Create(db *gorm.DB, consultation *entity.Consultation) error {
	*consultation = *r.add(*consultation)
	return nil
}

func (r *fakeConsultationRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	return r.FindOwned(db, id, nil)
}

func (r *fakeConsultationRepo) FindOwned(db *gorm.DB, id uuid.UUID, doctorID *uuid.UUID) (*entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consultations[id]
	if !ok || (doctorID != nil && c.DoctorID != *doctorID) {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeConsultationRepo) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.consultations {
		if c.AppointmentID != nil && *c.AppointmentID == appointmentID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConsultationRepo) matching(filter *entity.ConsultationFilter) []entity.Consultation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Consultation
	for _, c := range r.consultations {
		if filter != nil {
			if filter.PatientID != nil && c.PatientID != *filter.PatientID {
				continue
			}
			if filter.DoctorID != nil && c.DoctorID != *filter.DoctorID {
				continue
			}
			if filter.From != nil && c.ConsultationDate.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !c.ConsultationDate.Before(*filter.To) {
				continue
			}
			if filter.Search != "" && !matchesText(c, filter.Search) {
				continue
			}
		}
		out = append(out, *c)
	}
	ascending := filter != nil && filter.Ascending
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].ConsultationDate.Before(out[j].ConsultationDate)
		}
		return out[i].ConsultationDate.After(out[j].ConsultationDate)
	})
	return out
}

func matchesText(c *entity.Consultation, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{c.Motif, c.History, c.Anamnesis, c.ClinicalExam, c.Plan, c.Treatment} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (r *fakeConsultationRepo) FindAll(db *gorm.DB, filter *entity.ConsultationFilter) ([]entity.Consultation, error) {
	out := r.matching(filter)
	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(out) {
				return []entity.Consultation{}, nil
			}
			out = out[filter.Offset:]
		}
		if filter.Limit > 0 && len(out) > filter.Limit {
			out = out[:filter.Limit]
		}
	}
	return out, nil
}

func (r *fakeConsultationRepo) Count(db *gorm.DB, filter *entity.ConsultationFilter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

func (r *fakeConsultationRepo) Update(db *gorm.DB, id uuid.UUID, patch *entity.ConsultationPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.consultations[id]; ok {
		patch.Apply(c)
	}
	return nil
}

func (r *fakeConsultationRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.consultations[id]; !ok {
		return 0, nil
	}
	delete(r.consultations, id)
	return 1, nil
}

func (r *fakeConsultationRepo) MonthlyHistogram(db *gorm.DB, doctorID *uuid.UUID, since time.Time) ([]entity.MonthlyCount, error) {
	counts := make(map[[2]int]int64)
	for _, c := range r.matching(&entity.ConsultationFilter{DoctorID: doctorID, From: &since}) {
		counts[[2]int{c.ConsultationDate.Year(), int(c.ConsultationDate.Month())}]++
	}
	out := make([]entity.MonthlyCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, entity.MonthlyCount{Year: k[0], Month: k[1], Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (r *fakeConsultationRepo) SumPaidFees(db *gorm.DB, doctorID *uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range r.matching(&entity.ConsultationFilter{DoctorID: doctorID}) {
		if c.IsPaid {
			total = total.Add(c.Fee)
		}
	}
	return total, nil
}

// --- services ---

type fakeAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (s *fakeAuditService) record(action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func (s *fakeAuditService) LogCreate(tx *gorm.DB, actorID *uuid.UUID, action string, target service.AuditTarget, newValue interface{}) error {
	return s.record(action)
}

func (s *fakeAuditService) LogUpdate(tx *gorm.DB, actorID *uuid.UUID, action string, target service.AuditTarget, oldValue, newValue interface{}) error {
	return s.record(action)
}

func (s *fakeAuditService) LogDelete(tx *gorm.DB, actorID *uuid.UUID, action string, target service.AuditTarget, oldValue interface{}) error {
	return s.record(action)
}

type fakeStatsCache struct {
	mu          sync.Mutex
	store       map[string]*entity.ConsultationStats
	invalidated []uuid.UUID
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{store: make(map[string]*entity.ConsultationStats)}
}

func (c *fakeStatsCache) Get(ctx context.Context, doctorID *uuid.UUID) (*entity.ConsultationStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.store[service.StatsKey(doctorID)]
	return stats, ok
}

func (c *fakeStatsCache) Set(ctx context.Context, doctorID *uuid.UUID, stats *entity.ConsultationStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[service.StatsKey(doctorID)] = stats
}

func (c *fakeStatsCache) Invalidate(ctx context.Context, doctorID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, doctorID)
	delete(c.store, service.StatsKey(&doctorID))
	delete(c.store, service.StatsKey(nil))
}
