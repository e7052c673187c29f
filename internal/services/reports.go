package services

import (
	"context"
	"sort"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Period is a resolved reporting window [Start, End).
type Period struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ResolvePeriod maps a period token to a window. Unknown tokens and invalid custom
// ranges fall back to the last 30 days.
func ResolvePeriod(token, start, end string, now time.Time) Period {
	now = now.UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch token {
	case "7d":
		return Period{Name: token, Start: now.AddDate(0, 0, -7), End: now}
	case "current":
		return Period{Name: token, Start: firstOfMonth, End: now}
	case "lastMonth":
		return Period{Name: token, Start: firstOfMonth.AddDate(0, -1, 0), End: firstOfMonth}
	case "lastYear":
		return Period{Name: token, Start: now.AddDate(0, 0, -365), End: now}
	case "thisYear":
		return Period{Name: token, Start: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), End: now}
	case "custom":
		from, errFrom := time.Parse(dateLayout, start)
		to, errTo := time.Parse(dateLayout, end)
		if errFrom == nil && errTo == nil && !to.Before(from) {
			// end date is inclusive
			return Period{Name: token, Start: from, End: to.AddDate(0, 0, 1)}
		}
	}
	return Period{Name: "30d", Start: now.AddDate(0, 0, -30), End: now}
}

type DoctorReportRow struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Location  string `json:"location"`
	Profile   int    `json:"profile"`
	Phone     int    `json:"phone"`
	Email     int    `json:"email"`
	Website   int    `json:"website"`
	Total     int    `json:"total"`
}

type ReportSummary struct {
	Period  Period            `json:"period"`
	Totals  models.Clicks     `json:"totals"`
	Total   int               `json:"total"`
	Doctors []DoctorReportRow `json:"doctors"`
}

type TimeSeriesPoint struct {
	Date    string `json:"date"`
	Views   int    `json:"views"`
	Calls   int    `json:"calls"`
	Emails  int    `json:"emails"`
	Website int    `json:"website"`
}

type DoctorAnalytics struct {
	DoctorID    int64             `json:"doctorId"`
	Period      Period            `json:"period"`
	Clicks      models.Clicks     `json:"clicks"`
	Total       int               `json:"total"`
	Series      []TimeSeriesPoint `json:"series"`
	Rating      float64           `json:"rating"`
	ReviewCount int               `json:"reviewCount"`
	Unread      int               `json:"unreadMessages"`
}

type AdminOverview struct {
	ApprovedDoctors     int               `json:"approvedDoctors"`
	PendingDoctors      int               `json:"pendingDoctors"`
	TotalInteractions   int               `json:"totalInteractions"`
	ActiveSubscriptions int               `json:"activeSubscriptions"`
	Affiliates          *AffiliateSummary `json:"affiliates"`
}

type ReportService struct {
	doctors    *DoctorService
	reviews    *ReviewService
	messages   *MessageService
	affiliates *AffiliateService
	events     EventLog
	logger     *zap.Logger
}

func NewReportService(doctors *DoctorService, reviews *ReviewService, messages *MessageService, affiliates *AffiliateService, events EventLog, logger *zap.Logger) *ReportService {
	return &ReportService{doctors: doctors, reviews: reviews, messages: messages, affiliates: affiliates, events: events, logger: logger}
}

func reportRow(d models.Doctor) DoctorReportRow {
	return DoctorReportRow{
		ID:        d.ID,
		Name:      d.Name,
		Specialty: d.Specialty,
		Location:  d.Location,
		Profile:   d.Clicks.Profile,
		Phone:     d.Clicks.Phone,
		Email:     d.Clicks.Email,
		Website:   d.Clicks.Website,
		Total:     d.Clicks.Total(),
	}
}

// Summary totals the click counters of the selected doctors. Unknown ids are ignored.
func (s *ReportService) Summary(ctx context.Context, doctorIDs []int64, period Period) (*ReportSummary, error) {
	if len(doctorIDs) == 0 {
		return nil, &utils.ValidationError{Field: "doctors", Message: "select at least one doctor"}
	}
	doctors, err := s.doctors.All(ctx)
	if err != nil {
		return nil, err
	}
	selected := make(map[int64]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		selected[id] = true
	}

	sum := &ReportSummary{Period: period, Doctors: []DoctorReportRow{}}
	for _, d := range doctors {
		if !selected[d.ID] {
			continue
		}
		sum.Totals.Phone += d.Clicks.Phone
		sum.Totals.Email += d.Clicks.Email
		sum.Totals.Website += d.Clicks.Website
		sum.Totals.Profile += d.Clicks.Profile
		sum.Doctors = append(sum.Doctors, reportRow(d))
	}
	sum.Total = sum.Totals.Total()
	return sum, nil
}

// TopDoctors ranks all doctors by total interactions; n <= 0 means 5.
func (s *ReportService) TopDoctors(ctx context.Context, n int) ([]DoctorReportRow, error) {
	if n <= 0 {
		n = 5
	}
	doctors, err := s.doctors.All(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]DoctorReportRow, 0, len(doctors))
	for _, d := range doctors {
		rows = append(rows, reportRow(d))
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// TimeSeries buckets the event log per day over the period. Empty ids covers every doctor.
func (s *ReportService) TimeSeries(ctx context.Context, doctorIDs []int64, period Period) ([]TimeSeriesPoint, error) {
	events, err := s.events.Events(ctx, doctorIDs, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	return bucketByDay(events, period), nil
}

func bucketByDay(events []models.AnalyticsEvent, period Period) []TimeSeriesPoint {
	points := make([]TimeSeriesPoint, 0)
	index := make(map[string]int)
	day := time.Date(period.Start.Year(), period.Start.Month(), period.Start.Day(), 0, 0, 0, 0, time.UTC)
	for day.Before(period.End) {
		key := day.Format(dateLayout)
		index[key] = len(points)
		points = append(points, TimeSeriesPoint{Date: key})
		day = day.AddDate(0, 0, 1)
	}
	for _, ev := range events {
		i, ok := index[ev.Timestamp.UTC().Format(dateLayout)]
		if !ok {
			continue
		}
		switch ev.Type {
		case models.EventProfile:
			points[i].Views++
		case models.EventPhone:
			points[i].Calls++
		case models.EventEmail:
			points[i].Emails++
		case models.EventWebsite:
			points[i].Website++
		}
	}
	return points
}

func (s *ReportService) Export(ctx context.Context, doctorIDs []int64, period Period, format string) (*ExportFile, error) {
	sum, err := s.Summary(ctx, doctorIDs, period)
	if err != nil {
		return nil, err
	}
	return ExportSummary(sum, format)
}

func (s *ReportService) DoctorAnalytics(ctx context.Context, doctorID int64, period Period) (*DoctorAnalytics, error) {
	d, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	series, err := s.TimeSeries(ctx, []int64{doctorID}, period)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.List(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.UnreadCount(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return &DoctorAnalytics{
		DoctorID:    d.ID,
		Period:      period,
		Clicks:      d.Clicks,
		Total:       d.Clicks.Total(),
		Series:      series,
		Rating:      d.Rating,
		ReviewCount: len(reviews),
		Unread:      unread,
	}, nil
}

func (s *ReportService) AdminOverview(ctx context.Context) (*AdminOverview, error) {
	doctors, err := s.doctors.All(ctx)
	if err != nil {
		return nil, err
	}
	o := &AdminOverview{}
	for _, d := range doctors {
		if d.Approved {
			o.ApprovedDoctors++
		} else {
			o.PendingDoctors++
		}
		o.TotalInteractions += d.Clicks.Total()
		if d.HasActiveSubscription() {
			o.ActiveSubscriptions++
		}
	}
	if o.Affiliates, err = s.affiliates.Summary(ctx); err != nil {
		return nil, err
	}
	return o, nil
}
