package handlers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"devfolio/internal/storage"
)

// ImageUpload stores a standalone image and returns its URL, for pasting
// into post bodies. ?prefix= picks blog_images (default), skills or avatars.
func (a *Admin) ImageUpload(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	switch prefix {
	case "", storage.PrefixBlog, storage.PrefixSkills, storage.PrefixAvatar:
	default:
		writeError(w, http.StatusBadRequest, "Unknown image prefix.")
		return
	}

	url, ok := a.uploadRequired(w, r, prefix)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// uploadRequired handles requests whose only purpose is the upload, so a
// failure is the response.
func (a *Admin) uploadRequired(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	if !parseUploadForm(w, r) {
		return "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return "", false
	}
	defer file.Close()

	url, err := a.images.Upload(r.Context(), file, header, prefix)
	if err != nil {
		writeUploadError(w, err)
		return "", false
	}
	return url, true
}

// maxUploadBody leaves room for the other form fields next to one image.
const maxUploadBody = storage.MaxImageSize + 1<<20

// parseUploadForm caps the body and parses a multipart form, writing the
// error response when it fails. An oversized body is a 413.
func parseUploadForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	err := r.ParseMultipartForm(maxUploadBody)
	if err == nil {
		return true
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) || errors.Is(err, multipart.ErrMessageTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request is larger than 6 MiB.")
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid form data.")
	return false
}

// uploadOptional uploads the named form file if one was sent. tried is
// false when the field is absent. Failures are logged, never fatal.
func (a *Admin) uploadOptional(r *http.Request, field, prefix string) (url string, tried bool, err error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", false, nil
	}
	if err != nil {
		slog.Warn("read uploaded image", "field", field, "error", err)
		return "", true, err
	}
	defer file.Close()

	url, err = a.images.Upload(r.Context(), file, header, prefix)
	if err != nil {
		slog.Warn("image upload failed, saving without image", "prefix", prefix, "filename", header.Filename, "error", err)
		return "", true, err
	}
	return url, true, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "Image storage is not configured.")
	case errors.Is(err, storage.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Image is larger than 5 MiB.")
	case errors.Is(err, storage.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, "File is not a supported image.")
	default:
		slog.Error("image upload failed", "error", err)
		writeError(w, http.StatusBadGateway, "Image upload failed.")
	}
}
