package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/lebdoc-backend/internal/services"
	"go.uber.org/zap"
)

const maxImageSize = 5 << 20 // 5MB

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// UploadImage handles profile picture uploads to Cloudinary
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.Uploader == nil {
		h.writeServiceError(w, r, services.ErrUploadUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1024)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "Image must be at most 5MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		writeError(w, http.StatusBadRequest, "Image must be at most 5MB")
		return
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	url, err := h.Uploader.UploadImage(r.Context(), file, services.DoctorImageFolder)
	if err != nil {
		h.Logger.Error("image upload failed", zap.String("filename", header.Filename), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to upload image, please try again later")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "File uploaded successfully",
		URL:     url,
	})
}
