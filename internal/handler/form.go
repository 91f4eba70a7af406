package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"propertyad/internal/form"
	"propertyad/internal/httputil"
	"propertyad/internal/model"
	"propertyad/internal/schema"
)

const (
	// maxMultipartMemory is kept in memory before spilling to temp files
	maxMultipartMemory = 32 << 20
	// maxUploadBody bounds a single image batch request
	maxUploadBody = model.MaxImageCount*model.MaxImageSizeBytes + 1<<20
)

type FormHandler struct {
	store   *form.Store
	options model.Options
	log     *zap.Logger
}

func NewFormHandler(store *form.Store, options model.Options, log *zap.Logger) *FormHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FormHandler{store: store, options: options, log: log}
}

// Options handles GET /options
// Returns the choices for every enumerated field.
func (h *FormHandler) Options(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.options)
}

// Create handles POST /forms
// Starts a new empty form.
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	c := h.store.Create()
	httputil.WriteJSON(w, http.StatusCreated, c.Snapshot())
}

// Get handles GET /forms/{id}
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c.Snapshot())
}

// Delete handles DELETE /forms/{id}
// Discards the form and any pending previews.
func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		httputil.WriteNotFound(w, "Form not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Form discarded",
	})
}

// EditFieldRequest carries the raw field value; numbers may be sent as JSON numbers or text.
type EditFieldRequest struct {
	Value json.RawMessage `json:"value"`
}

// EditField handles PUT /forms/{id}/fields/{field}
func (h *FormHandler) EditField(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req EditFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	raw, err := rawValue(req.Value)
	if err != nil {
		httputil.WriteBadRequest(w, "value must be a string or a number")
		return
	}

	field := model.Field(chi.URLParam(r, "field"))
	if err := c.EditField(field, raw); err != nil {
		if errors.Is(err, model.ErrUnknownField) {
			httputil.WriteBadRequestWithCode(w, model.CodeUnknownField, fmt.Sprintf("Unknown field %q", field))
			return
		}
		h.log.Error("edit field", zap.String("form_id", c.ID()), zap.Error(err))
		httputil.WriteInternalError(w, "Failed to update field")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, c.Snapshot())
}

func rawValue(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", nil
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// UploadImages handles POST /forms/{id}/images
// Accepts a multipart batch under the "images" key.
func (h *FormHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		httputil.WriteBadRequest(w, "Invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["images"]
	files := make([]model.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readImageFile(fh)
		if err != nil {
			h.log.Warn("read upload", zap.String("form_id", c.ID()), zap.String("name", fh.Filename), zap.Error(err))
			httputil.WriteBadRequest(w, "Failed to read uploaded file")
			return
		}
		files = append(files, f)
	}

	accepted, err := c.AddImages(files)
	snap := c.Snapshot()
	switch {
	case errors.Is(err, model.ErrTooManyImages):
		httputil.WriteFieldErrors(w, model.CodeTooManyImages, model.MsgTooManyImages, snap.Errors)
	case errors.Is(err, model.ErrImagesRejected) && accepted == 0:
		httputil.WriteFieldErrors(w, model.CodeImagesRejected, model.MsgImagesRejected, snap.Errors)
	default:
		httputil.WriteJSON(w, http.StatusOK, snap)
	}
}

// readImageFile collects the declared metadata and, for files within the size
// limit, the bytes. An empty declared type is sniffed from the content.
func readImageFile(fh *multipart.FileHeader) (model.ImageFile, error) {
	f := model.ImageFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	if idx := strings.Index(f.ContentType, ";"); idx != -1 {
		f.ContentType = strings.TrimSpace(f.ContentType[:idx])
	}
	if fh.Size > model.MaxImageSizeBytes {
		return f, nil
	}

	file, err := fh.Open()
	if err != nil {
		return f, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, model.MaxImageSizeBytes+1))
	if err != nil {
		return f, fmt.Errorf("read upload: %w", err)
	}
	f.Data = data
	f.Size = int64(len(data))

	if f.ContentType == "" && len(data) > 0 {
		f.ContentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	return f, nil
}

// RemoveImage handles DELETE /forms/{id}/images/{index}
// An index past the end leaves the form unchanged.
func (h *FormHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid image index")
		return
	}
	c.RemoveImage(index)

	httputil.WriteJSON(w, http.StatusOK, c.Snapshot())
}

// Submit handles POST /forms/{id}/submit
// Validates the draft; on success the listing is posted in the background.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	err := c.Submit(r.Context())
	if err != nil {
		var failure *schema.ValidationFailure
		switch {
		case errors.Is(err, model.ErrFormSubmitting):
			httputil.WriteConflictWithCode(w, model.CodeSubmitting, "Your ad is already being posted")
		case errors.As(err, &failure):
			httputil.WriteFieldErrors(w, model.CodeValidationFailed, "Please correct the highlighted fields", failure.ErrorMap())
		default:
			h.log.Error("submit form", zap.String("form_id", c.ID()), zap.Error(err))
			httputil.WriteInternalError(w, "Failed to submit form")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, c.Snapshot())
}

func (h *FormHandler) lookup(w http.ResponseWriter, r *http.Request) (*form.Controller, bool) {
	c, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteNotFound(w, "Form not found")
		return nil, false
	}
	return c, true
}
