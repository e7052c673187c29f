package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/AnshRaj112/lebdoc-backend/internal/services"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"go.uber.org/zap"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		raw      string
		expected []int64
		wantErr  bool
	}{
		{"", []int64{}, false},
		{"1,2,3", []int64{1, 2, 3}, false},
		{" 4 , ,5", []int64{4, 5}, false},
		{"1,abc", nil, true},
	}
	for _, tt := range tests {
		ids, err := parseIDs(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%q: unexpected error %v", tt.raw, err)
		}
		if tt.wantErr {
			continue
		}
		if len(ids) != len(tt.expected) {
			t.Fatalf("%q: expected %v, got %v", tt.raw, tt.expected, ids)
		}
		for i := range ids {
			if ids[i] != tt.expected[i] {
				t.Fatalf("%q: expected %v, got %v", tt.raw, tt.expected, ids)
			}
		}
	}
}

func TestWriteServiceError(t *testing.T) {
	h := &Handler{Logger: zap.NewNop()}
	tests := []struct {
		err    error
		status int
	}{
		{&utils.ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("doctor 9: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrDuplicateReview, http.StatusConflict},
		{services.ErrNotApproved, http.StatusConflict},
		{services.ErrEmailInUse, http.StatusConflict},
		{services.ErrGateway, http.StatusBadGateway},
		{services.ErrUploadUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		if rec.Code != tt.status {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.status, rec.Code)
		}
	}
}

type fakeUploader struct {
	folder string
	err    error
}

func (f *fakeUploader) UploadImage(ctx context.Context, file io.Reader, folder string) (string, error) {
	f.folder = folder
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.test/doctor.png", nil
}

func uploadRequest(t *testing.T, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="doctor.png"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write([]byte("not really a png"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadImage(t *testing.T) {
	tests := []struct {
		name        string
		uploader    *fakeUploader
		contentType string
		status      int
	}{
		{"image", &fakeUploader{}, "image/png", http.StatusOK},
		{"not an image", &fakeUploader{}, "application/pdf", http.StatusBadRequest},
		{"provider failure", &fakeUploader{err: errors.New("down")}, "image/png", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{Uploader: tt.uploader, Logger: zap.NewNop()}
			rec := httptest.NewRecorder()
			h.UploadImage(rec, uploadRequest(t, tt.contentType))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status == http.StatusOK && tt.uploader.folder != services.DoctorImageFolder {
				t.Fatalf("expected folder %s, got %s", services.DoctorImageFolder, tt.uploader.folder)
			}
		})
	}
}
