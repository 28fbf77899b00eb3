package handlers

import (
	"bytes"
	"encoding/base64"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/AnshRaj112/company-messenger/internal/services"
)

// MaxLogoSize bounds logo uploads.
const MaxLogoSize = 2 << 20

// UploadLogo handles POST /api/admin/branding/logo (multipart field "logo").
// The file goes to Cloudinary when configured, otherwise it is stored inline as
// a data URI.
func (h *Handlers) UploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxLogoSize+1<<10)
	if err := r.ParseMultipartForm(MaxLogoSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, fileHeader, err := r.FormFile("logo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxLogoSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	if len(data) > MaxLogoSize {
		writeError(w, http.StatusRequestEntityTooLarge, "Logo must be 2MB or smaller")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "Logo must be an image")
		return
	}

	var logoURL string
	if h.Uploader != nil {
		logoURL, err = h.Uploader.Upload(r.Context(), bytes.NewReader(data), services.LogoFolder)
		if err != nil {
			log.Printf("handlers: logo upload: %v", err)
			writeError(w, http.StatusBadGateway, "Failed to upload file")
			return
		}
	} else {
		logoURL = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	}

	user := currentUser(r)
	st, err := h.Store.UpdateBranding(r.Context(), user.ID, h.Store.Settings().CompanyName, logoURL)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Message: "Branding updated successfully!", Settings: &st})
}
