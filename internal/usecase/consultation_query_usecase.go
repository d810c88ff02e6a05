package usecase

import (
	"context"
	"strings"
	"time"

	"go-clinic-workflow/internal/converter"
	"go-clinic-workflow/internal/delivery/dto"
	"go-clinic-workflow/internal/domain/entity"
	"go-clinic-workflow/internal/domain/repository"
	"go-clinic-workflow/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	DefaultPage      = 1
	DefaultLimit     = 10
	MaxLimit         = 100
	MaxSearchResults = 50

	dayLayout = "2006-01-02"
)

// ConsultationQueryUsecase serves the read side of consultations.
type ConsultationQueryUsecase interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) (*dto.ConsultationListResponse, error)
	ListAll(ctx context.Context, doctorID *uuid.UUID) (*dto.ConsultationListResponse, error)
	FindAll(ctx context.Context, query *dto.ConsultationQuery, patientID uuid.UUID, doctorID *uuid.UUID) (*dto.PaginatedConsultationResponse, error)
	Stats(ctx context.Context, doctorID *uuid.UUID) (*dto.ConsultationStatsResponse, error)
	Search(ctx context.Context, term string, doctorID *uuid.UUID) (*dto.ConsultationListResponse, error)
}

type consultationQueryUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	statsCache       service.StatsCache
	now              func() time.Time
	location         *time.Location
}

func NewConsultationQueryUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	statsCache service.StatsCache,
	now func() time.Time,
	location *time.Location,
) ConsultationQueryUsecase {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &consultationQueryUsecase{
		db:               db,
		log:              log,
		consultationRepo: consultationRepo,
		statsCache:       statsCache,
		now:              now,
		location:         location,
	}
}

func (u *consultationQueryUsecase) ListByPatient(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) (*dto.ConsultationListResponse, error) {
	if patientID == uuid.Nil {
		return nil, ErrPatientIDRequired
	}
	return u.list(ctx, &entity.ConsultationFilter{PatientID: &patientID, DoctorID: doctorID})
}

func (u *consultationQueryUsecase) ListAll(ctx context.Context, doctorID *uuid.UUID) (*dto.ConsultationListResponse, error) {
	return u.list(ctx, &entity.ConsultationFilter{DoctorID: doctorID})
}

func (u *consultationQueryUsecase) Search(ctx context.Context, term string, doctorID *uuid.UUID) (*dto.ConsultationListResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrSearchTermRequired
	}
	return u.list(ctx, &entity.ConsultationFilter{DoctorID: doctorID, Search: term, Limit: MaxSearchResults})
}

func (u *consultationQueryUsecase) list(ctx context.Context, filter *entity.ConsultationFilter) (*dto.ConsultationListResponse, error) {
	consultations, err := u.consultationRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list consultations: %+v", err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

// FindAll pages through a patient's consultations. The page and the total
// count are fetched concurrently.
func (u *consultationQueryUsecase) FindAll(ctx context.Context, query *dto.ConsultationQuery, patientID uuid.UUID, doctorID *uuid.UUID) (*dto.PaginatedConsultationResponse, error) {
	if patientID == uuid.Nil {
		return nil, ErrPatientIDRequired
	}

	page, limit := normalizePage(query.Page, query.Limit)

	filter := &entity.ConsultationFilter{
		PatientID: &patientID,
		DoctorID:  doctorID,
		Search:    strings.TrimSpace(query.Search),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	switch strings.ToLower(query.SortOrder) {
	case "", "desc":
	case "asc":
		filter.Ascending = true
	default:
		return nil, ErrInvalidSortOrder
	}

	from, to, err := u.dateRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	filter.From, filter.To = from, to

	var (
		consultations []entity.Consultation
		total         int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		consultations, err = u.consultationRepo.FindAll(u.db.WithContext(gctx), filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = u.consultationRepo.Count(u.db.WithContext(gctx), filter)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to page consultations for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.PaginatedConsultationResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Pagination: dto.PaginationResponse{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

// Stats reports totals for a doctor, or the whole clinic when doctorID is nil.
func (u *consultationQueryUsecase) Stats(ctx context.Context, doctorID *uuid.UUID) (*dto.ConsultationStatsResponse, error) {
	if cached, ok := u.statsCache.Get(ctx, doctorID); ok {
		return converter.ConsultationStatsToResponse(cached), nil
	}

	now := u.now()
	todayStart, todayEnd := dayBounds(now, u.location)
	local := now.In(u.location)
	since := time.Date(local.Year(), local.Month()-11, 1, 0, 0, 0, 0, u.location)

	stats := &entity.ConsultationStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.TotalConsultations, err = u.consultationRepo.Count(u.db.WithContext(gctx), &entity.ConsultationFilter{DoctorID: doctorID})
		return err
	})
	g.Go(func() error {
		var err error
		stats.TodayConsultations, err = u.consultationRepo.Count(u.db.WithContext(gctx), &entity.ConsultationFilter{
			DoctorID: doctorID,
			From:     &todayStart,
			To:       &todayEnd,
		})
		return err
	})
	g.Go(func() error {
		var err error
		stats.MonthlyStats, err = u.consultationRepo.MonthlyHistogram(u.db.WithContext(gctx), doctorID, since)
		return err
	})
	g.Go(func() error {
		var err error
		stats.PaidRevenue, err = u.consultationRepo.SumPaidFees(u.db.WithContext(gctx), doctorID)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to compute consultation stats: %+v", err)
		return nil, err
	}
	if stats.MonthlyStats == nil {
		stats.MonthlyStats = []entity.MonthlyCount{}
	}

	u.statsCache.Set(ctx, doctorID, stats)
	return converter.ConsultationStatsToResponse(stats), nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// dateRange parses the optional bounds into [from, to). A plain end day
// covers that whole day.
func (u *consultationQueryUsecase) dateRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if start = strings.TrimSpace(start); start != "" {
		t, _, err := parseQueryDate(start, u.location)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}

	if end = strings.TrimSpace(end); end != "" {
		t, dayOnly, err := parseQueryDate(end, u.location)
		if err != nil {
			return nil, nil, err
		}
		if from != nil && from.After(t) {
			return nil, nil, ErrInvalidDateRange
		}
		if dayOnly {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.Add(time.Nanosecond)
		}
		to = &t
	}

	return from, to, nil
}

func parseQueryDate(value string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dayLayout, value, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, ErrInvalidDate
}
