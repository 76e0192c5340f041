package guidelines

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/guidesync/internal/auth"
	"github.com/JaimeStill/guidesync/pkg/handlers"
	"github.com/JaimeStill/guidesync/pkg/pagination"
	"github.com/JaimeStill/guidesync/pkg/routes"
)

// multipartOverhead is the allowance for form fields and boundaries on top of
// the maximum file size.
const multipartOverhead = 1 << 20

// Handler provides HTTP endpoints for guideline operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "guidelines"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for guideline endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/guidelines",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/specialities", Handler: h.Specialities},
			{Method: "GET", Pattern: "/trusts", Handler: h.Trusts},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/file", Handler: h.Download},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of guidelines filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.List(r.Context(), filters, page, auth.CallerFrom(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search returns guidelines matching the q (or search) parameter, ranked by relevance.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	page := pagination.PageRequestFromQuery(values, h.pagination)

	filters, err := FiltersFromQuery(values)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	q := values.Get("q")
	if q == "" {
		q = values.Get("search")
	}

	result, err := h.sys.Search(r.Context(), q, filters, page, auth.CallerFrom(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Specialities returns the medical speciality enumeration with display labels.
func (h *Handler) Specialities(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Specialities())
}

// Trusts returns the distinct trust names of active guidelines.
func (h *Handler) Trusts(w http.ResponseWriter, r *http.Request) {
	trusts, err := h.sys.Trusts(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, trusts)
}

// Find returns a single guideline by its ID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	g, err := h.sys.Find(r.Context(), r.PathValue("id"), auth.CallerFrom(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, g)
}

// Download streams the stored PDF of a file-backed guideline.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	file, err := h.sys.Download(r.Context(), r.PathValue("id"), auth.CallerFrom(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer file.Body.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set(
		"Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}),
	)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, file.Body); err != nil {
		h.logger.Warn("file stream interrupted", "id", r.PathValue("id"), "error", err)
	}
}

// Create accepts a JSON body or a multipart form with an optional PDF file.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.permit(w, r, opCreate) {
		return
	}

	req, err := h.createRequest(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	g, err := h.sys.Create(r.Context(), req, auth.CallerFrom(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondMessage(w, http.StatusCreated, g, "Guideline created successfully")
}

// Update applies a partial JSON body or multipart form to an existing guideline.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.permit(w, r, opUpdate) {
		return
	}

	req, err := h.updateRequest(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	g, err := h.sys.Update(r.Context(), r.PathValue("id"), req, auth.CallerFrom(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondMessage(w, http.StatusOK, g, "Guideline updated successfully")
}

// Delete permanently removes a guideline by its ID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.permit(w, r, opDelete) {
		return
	}

	if err := h.sys.Delete(r.Context(), r.PathValue("id"), auth.CallerFrom(r.Context())); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondMessage(w, http.StatusOK, nil, "Guideline deleted successfully")
}

// permit rejects callers lacking the class op requires before the body is read.
func (h *Handler) permit(w http.ResponseWriter, r *http.Request, op operation) bool {
	if err := authorize(op, auth.CallerFrom(r.Context())); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return false
	}
	return true
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) (CreateRequest, error) {
	var req CreateRequest

	if !isMultipart(r) {
		return req, h.decodeJSON(w, r, &req)
	}

	form, file, err := h.readMultipart(w, r)
	if err != nil {
		return req, err
	}

	req = CreateRequest{
		TrustName:         form.Get("trustName"),
		Title:             form.Get("title"),
		Description:       form.Get("description"),
		MedicalSpeciality: form.Get("medicalSpeciality"),
		Content:           form.Get("content"),
		Tags:              formTags(form["tags"]),
		File:              file,
	}
	return req, nil
}

func (h *Handler) updateRequest(w http.ResponseWriter, r *http.Request) (UpdateRequest, error) {
	var req UpdateRequest

	if !isMultipart(r) {
		return req, h.decodeJSON(w, r, &req)
	}

	form, file, err := h.readMultipart(w, r)
	if err != nil {
		return req, err
	}

	req = UpdateRequest{
		TrustName:         formValue(form, "trustName"),
		Title:             formValue(form, "title"),
		Description:       formValue(form, "description"),
		MedicalSpeciality: formValue(form, "medicalSpeciality"),
		Content:           formValue(form, "content"),
		File:              file,
	}

	if values, ok := form["tags"]; ok {
		tags := formTags(values)
		req.Tags = &tags
	}

	if v := formValue(form, "isActive"); v != nil {
		active, err := strconv.ParseBool(*v)
		if err != nil {
			return req, fmt.Errorf("%w: invalid isActive %q", ErrValidation, *v)
		}
		req.IsActive = &active
	}

	return req, nil
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, multipartOverhead)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrFileTooLarge
		}
		return fmt.Errorf("%w: invalid request body", ErrValidation)
	}
	return nil
}

// readMultipart parses a multipart form and returns its values and the
// optional file part named "file".
func (h *Handler) readMultipart(w http.ResponseWriter, r *http.Request) (url.Values, *File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, ErrFileTooLarge
		}
		return nil, nil, fmt.Errorf("%w: malformed multipart form", ErrValidation)
	}
	defer r.MultipartForm.RemoveAll()

	form := url.Values(r.MultipartForm.Value)

	part, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	return form, &File{
		Filename:    header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
		Data:        data,
	}, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func formValue(form url.Values, key string) *string {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func formTags(values []string) Tags {
	tags := make(Tags, 0)
	for _, v := range values {
		tags = append(tags, ParseTags(v)...)
	}
	return tags
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
