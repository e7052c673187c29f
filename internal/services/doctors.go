package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"go.uber.org/zap"
)

// DirectoryFilter narrows the public directory. Empty fields are ignored.
type DirectoryFilter struct {
	City      string `json:"city"`
	Specialty string `json:"specialty"`
	Language  string `json:"language"`
}

// DoctorInput is the editable part of a doctor record.
type DoctorInput struct {
	Name      string   `json:"name"`
	Specialty string   `json:"specialty"`
	Location  string   `json:"location"`
	Languages []string `json:"languages"`
	Phone     string   `json:"phone"`
	Email     string   `json:"email"`
	Website   string   `json:"website"`
	Image     string   `json:"image"`
}

// Normalize trims every field and drops empty languages.
func (in DoctorInput) Normalize() DoctorInput {
	out := DoctorInput{
		Name:      strings.TrimSpace(in.Name),
		Specialty: strings.TrimSpace(in.Specialty),
		Location:  strings.TrimSpace(in.Location),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		Website:   strings.TrimSpace(in.Website),
		Image:     strings.TrimSpace(in.Image),
		Languages: make([]string, 0, len(in.Languages)),
	}
	for _, l := range in.Languages {
		if l = strings.TrimSpace(l); l != "" {
			out.Languages = append(out.Languages, l)
		}
	}
	return out
}

func (in DoctorInput) Validate() error {
	if err := utils.Required(
		"name", in.Name,
		"specialty", in.Specialty,
		"location", in.Location,
		"phone", in.Phone,
	); err != nil {
		return err
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return err
	}
	if len(in.Languages) == 0 {
		return &utils.ValidationError{Field: "languages", Message: "at least one language is required"}
	}
	return nil
}

// RowError reports an import row that was skipped.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported []models.Doctor `json:"imported"`
	Skipped  []RowError      `json:"skipped"`
}

// DoctorService owns the doctors collection. Other services change doctor records through
// Update and UpdateAll so every read-modify-write goes through one mutex.
type DoctorService struct {
	store        store.Store
	logger       *zap.Logger
	defaultImage string
	now          Clock

	mu sync.Mutex
}

func NewDoctorService(s store.Store, defaultImage string, logger *zap.Logger) *DoctorService {
	return &DoctorService{store: s, logger: logger, defaultImage: defaultImage, now: time.Now}
}

func (s *DoctorService) load(ctx context.Context) ([]models.Doctor, error) {
	return readList[models.Doctor](ctx, s.store, store.DoctorsKey, s.logger)
}

func (s *DoctorService) save(ctx context.Context, doctors []models.Doctor) error {
	return store.WriteJSON(ctx, s.store, store.DoctorsKey, doctors)
}

// FilterDoctors returns the approved doctors matching f, in their original order.
// City and specialty are case-insensitive substring matches, language must equal one entry.
func FilterDoctors(doctors []models.Doctor, f DirectoryFilter) []models.Doctor {
	city := strings.ToLower(strings.TrimSpace(f.City))
	specialty := strings.ToLower(strings.TrimSpace(f.Specialty))
	language := strings.ToLower(strings.TrimSpace(f.Language))

	out := make([]models.Doctor, 0)
	for _, d := range doctors {
		if !d.Approved {
			continue
		}
		if city != "" && !strings.Contains(strings.ToLower(d.Location), city) {
			continue
		}
		if specialty != "" && !strings.Contains(strings.ToLower(d.Specialty), specialty) {
			continue
		}
		if language != "" && !speaks(d, language) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func speaks(d models.Doctor, language string) bool {
	for _, l := range d.Languages {
		if strings.ToLower(l) == language {
			return true
		}
	}
	return false
}

func (s *DoctorService) Search(ctx context.Context, f DirectoryFilter) ([]models.Doctor, error) {
	doctors, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return FilterDoctors(doctors, f), nil
}

func (s *DoctorService) All(ctx context.Context) ([]models.Doctor, error) {
	return s.load(ctx)
}

func (s *DoctorService) Approved(ctx context.Context) ([]models.Doctor, error) {
	return s.where(ctx, func(d models.Doctor) bool { return d.Approved })
}

func (s *DoctorService) Pending(ctx context.Context) ([]models.Doctor, error) {
	return s.where(ctx, func(d models.Doctor) bool { return !d.Approved })
}

// ReferredBy lists doctors submitted through an affiliate's referral link.
func (s *DoctorService) ReferredBy(ctx context.Context, affiliateID string) ([]models.Doctor, error) {
	return s.where(ctx, func(d models.Doctor) bool { return d.SubmittedBy == affiliateID })
}

func (s *DoctorService) where(ctx context.Context, keep func(models.Doctor) bool) ([]models.Doctor, error) {
	doctors, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Doctor, 0)
	for _, d := range doctors {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *DoctorService) Get(ctx context.Context, id int64) (*models.Doctor, error) {
	doctors, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doctors {
		if doctors[i].ID == id {
			return &doctors[i], nil
		}
	}
	return nil, ErrNotFound
}

// GetPublic hides pending doctors from anonymous callers.
func (s *DoctorService) GetPublic(ctx context.Context, id int64) (*models.Doctor, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.Approved {
		return nil, ErrNotFound
	}
	return d, nil
}

// nextID returns a millisecond timestamp id, bumped past the current maximum when needed.
func nextID(doctors []models.Doctor, now time.Time) int64 {
	id := now.UnixMilli()
	for _, d := range doctors {
		if d.ID >= id {
			id = d.ID + 1
		}
	}
	return id
}

func (s *DoctorService) newDoctor(in DoctorInput, submittedBy string, approved bool) models.Doctor {
	image := in.Image
	if image == "" {
		image = s.defaultImage
	}
	return models.Doctor{
		Name:        in.Name,
		Specialty:   in.Specialty,
		Location:    in.Location,
		Languages:   in.Languages,
		Phone:       in.Phone,
		Email:       in.Email,
		Website:     in.Website,
		Image:       image,
		Approved:    approved,
		SubmittedBy: submittedBy,
		SubmittedAt: s.now().UTC(),
	}
}

func (s *DoctorService) insert(ctx context.Context, fresh ...models.Doctor) ([]models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doctors, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range fresh {
		fresh[i].ID = nextID(doctors, now)
		doctors = append(doctors, fresh[i])
	}
	if err := s.save(ctx, doctors); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Submit handles the public "add a doctor" form. ref is the affiliate id from a referral link.
func (s *DoctorService) Submit(ctx context.Context, in DoctorInput, ref string) (*models.Doctor, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	submittedBy := models.SubmittedByPublic
	if ref = strings.TrimSpace(ref); ref != "" {
		affiliates, err := readList[models.Affiliate](ctx, s.store, store.AffiliatesKey, s.logger)
		if err != nil {
			return nil, err
		}
		for _, a := range affiliates {
			if a.ID == ref {
				submittedBy = a.ID
				break
			}
		}
	}

	created, err := s.insert(ctx, s.newDoctor(in, submittedBy, false))
	if err != nil {
		return nil, err
	}
	s.logger.Info("doctor submitted", zap.Int64("doctor_id", created[0].ID), zap.String("submitted_by", submittedBy))
	return &created[0], nil
}

func (s *DoctorService) CreateByAdmin(ctx context.Context, in DoctorInput) (*models.Doctor, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	created, err := s.insert(ctx, s.newDoctor(in, models.SubmittedByAdmin, true))
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// Import adds every valid row as a pending doctor. Invalid rows are skipped and reported
// with their 1-based position in inputs.
func (s *DoctorService) Import(ctx context.Context, inputs []DoctorInput) (*ImportResult, error) {
	result := &ImportResult{Imported: []models.Doctor{}, Skipped: []RowError{}}
	fresh := make([]models.Doctor, 0, len(inputs))
	for i, in := range inputs {
		in = in.Normalize()
		if err := in.Validate(); err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		fresh = append(fresh, s.newDoctor(in, models.SubmittedByAdmin, false))
	}
	if len(fresh) == 0 {
		return result, nil
	}
	created, err := s.insert(ctx, fresh...)
	if err != nil {
		return nil, err
	}
	result.Imported = created
	s.logger.Info("doctors imported", zap.Int("imported", len(created)), zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// Update applies fn to one doctor and persists the result.
func (s *DoctorService) Update(ctx context.Context, id int64, fn func(d *models.Doctor) error) (*models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doctors, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doctors {
		if doctors[i].ID != id {
			continue
		}
		if err := fn(&doctors[i]); err != nil {
			return nil, err
		}
		if err := s.save(ctx, doctors); err != nil {
			return nil, err
		}
		updated := doctors[i]
		return &updated, nil
	}
	return nil, ErrNotFound
}

// UpdateAll applies fn to every doctor and saves when at least one reports a change.
func (s *DoctorService) UpdateAll(ctx context.Context, fn func(d *models.Doctor) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doctors, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for i := range doctors {
		if fn(&doctors[i]) {
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, s.save(ctx, doctors)
}

// UpdateProfile lets a doctor edit their listing. Approval, counters, rating and
// subscription are not touched.
func (s *DoctorService) UpdateProfile(ctx context.Context, id int64, in DoctorInput) (*models.Doctor, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.Update(ctx, id, func(d *models.Doctor) error {
		d.Name = in.Name
		d.Specialty = in.Specialty
		d.Location = in.Location
		d.Languages = in.Languages
		d.Phone = in.Phone
		d.Email = in.Email
		d.Website = in.Website
		if in.Image != "" {
			d.Image = in.Image
		}
		return nil
	})
}

func (s *DoctorService) Approve(ctx context.Context, id int64) (*models.Doctor, error) {
	d, err := s.Update(ctx, id, func(d *models.Doctor) error {
		d.Approved = true
		return nil
	})
	if err == nil {
		s.logger.Info("doctor approved", zap.Int64("doctor_id", id))
	}
	return d, err
}

// Hide moves an approved doctor back to pending.
func (s *DoctorService) Hide(ctx context.Context, id int64) (*models.Doctor, error) {
	return s.Update(ctx, id, func(d *models.Doctor) error {
		if !d.Approved {
			return ErrNotApproved
		}
		d.Approved = false
		return nil
	})
}

// Reject deletes a pending doctor. Reviews, messages and credentials are left in place.
func (s *DoctorService) Reject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doctors, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, d := range doctors {
		if d.ID != id {
			continue
		}
		if d.Approved {
			return ErrNotPending
		}
		doctors = append(doctors[:i], doctors[i+1:]...)
		if err := s.save(ctx, doctors); err != nil {
			return err
		}
		s.logger.Info("doctor rejected", zap.Int64("doctor_id", id))
		return nil
	}
	return ErrNotFound
}

func (s *DoctorService) SetImage(ctx context.Context, id int64, url string) (*models.Doctor, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &utils.ValidationError{Field: "image", Message: "image is required"}
	}
	return s.Update(ctx, id, func(d *models.Doctor) error {
		d.Image = url
		return nil
	})
}

// SetRating stores the cached average; ReviewService calls it after every change.
func (s *DoctorService) SetRating(ctx context.Context, id int64, rating float64) error {
	_, err := s.Update(ctx, id, func(d *models.Doctor) error {
		d.Rating = rating
		return nil
	})
	return err
}

// Seed writes the initial directory when no doctors collection exists yet.
func (s *DoctorService) Seed(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing []models.Doctor
	found, err := store.ReadJSON(ctx, s.store, store.DoctorsKey, &existing)
	if err != nil || found {
		return false, err
	}
	if err := s.save(ctx, SeedDoctors()); err != nil {
		return false, err
	}
	s.logger.Info("seeded doctors directory", zap.Int("count", len(SeedDoctors())))
	return true, nil
}
