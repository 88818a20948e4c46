package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/garnizeh/cpdtrack/internal/cpd"
	"github.com/garnizeh/cpdtrack/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type logService interface {
	CreateLog(ctx context.Context, userID string, in cpd.LogInput, up *cpd.Upload) (*models.LogEntry, error)
	UpdateLog(ctx context.Context, userID, id string, in cpd.LogInput, up *cpd.Upload) (*models.LogEntry, error)
	GetLog(ctx context.Context, userID, id string) (*models.LogEntry, error)
	DeleteLog(ctx context.Context, userID, id string) error
	ListLogs(ctx context.Context, userID string, f models.LogFilter) (*cpd.LogPage, error)
}

type LogsHandler struct {
	svc       logService
	maxUpload int64
}

func NewLogsHandler(svc logService, maxUpload int64) *LogsHandler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &LogsHandler{svc: svc, maxUpload: maxUpload}
}

func (h *LogsHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.LogFilter{Category: models.Category(q.Get("category"))}

	if y := q.Get("year"); y != "" {
		v, err := strconv.Atoi(y)
		if err != nil || v <= 0 {
			writeMessage(w, "invalid year", http.StatusBadRequest)
			return
		}
		f.Year = v
	}

	// pagination: limit and offset params
	f.Limit = defaultListLimit
	if l := q.Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 || v > maxListLimit {
			writeMessage(w, "invalid limit", http.StatusBadRequest)
			return
		}
		f.Limit = v
	}
	if o := q.Get("offset"); o != "" {
		v, err := strconv.Atoi(o)
		if err != nil || v < 0 {
			writeMessage(w, "invalid offset", http.StatusBadRequest)
			return
		}
		f.Offset = v
	}

	page, err := h.svc.ListLogs(r.Context(), mustSession(r).UserID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, page, http.StatusOK)
}

func (h *LogsHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	in, up, err := h.readLogRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if up != nil {
		defer up.close()
	}

	e, err := h.svc.CreateLog(r.Context(), mustSession(r).UserID, in, up.upload())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, e, http.StatusCreated)
}

func (h *LogsHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.GetLog(r.Context(), mustSession(r).UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, e, http.StatusOK)
}

// UpdateLog sends callers that do not own the entry back to the log list,
// whatever the body holds.
func (h *LogsHandler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	userID, id := mustSession(r).UserID, mux.Vars(r)["id"]

	in, up, err := h.readLogRequest(w, r)
	if err != nil {
		if _, gerr := h.svc.GetLog(r.Context(), userID, id); errors.Is(gerr, models.ErrNotFound) {
			http.Redirect(w, r, "/v1/logs", http.StatusSeeOther)
			return
		}
		writeError(w, r, err)
		return
	}
	if up != nil {
		defer up.close()
	}

	e, err := h.svc.UpdateLog(r.Context(), userID, id, in, up.upload())
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			http.Redirect(w, r, "/v1/logs", http.StatusSeeOther)
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, e, http.StatusOK)
}

func (h *LogsHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLog(r.Context(), mustSession(r).UserID, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// formFile is an open multipart attachment.
type formFile struct {
	body        io.ReadCloser
	filename    string
	contentType string
}

func (f *formFile) upload() *cpd.Upload {
	if f == nil {
		return nil
	}
	return &cpd.Upload{Filename: f.filename, ContentType: f.contentType, Body: f.body}
}

func (f *formFile) close() {
	_ = f.body.Close()
}

// readLogRequest decodes a log entry from a JSON body or a multipart form with
// an optional "file" part.
func (h *LogsHandler) readLogRequest(w http.ResponseWriter, r *http.Request) (cpd.LogInput, *formFile, error) {
	var in cpd.LogInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+(1<<20))
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			return in, nil, models.NewValidationError("body", "invalid multipart form")
		}

		in.Date = r.FormValue("date")
		in.Description = r.FormValue("description")
		in.Category = models.Category(r.FormValue("category"))
		hours, err := strconv.ParseFloat(r.FormValue("hours"), 64)
		if err != nil {
			return in, nil, models.NewValidationError("hours", "must be a number")
		}
		in.Hours = hours
		if v := r.FormValue("remove_attachment"); v != "" {
			remove, err := strconv.ParseBool(v)
			if err != nil {
				return in, nil, models.NewValidationError("remove_attachment", "must be a boolean")
			}
			in.RemoveAttachment = remove
		}

		file, hdr, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return in, nil, nil
		}
		if err != nil {
			return in, nil, models.NewValidationError("file", "unreadable attachment")
		}
		return in, &formFile{body: file, filename: hdr.Filename, contentType: hdr.Header.Get("Content-Type")}, nil
	}

	body, err := readJSONBody(w, r)
	if err != nil {
		return in, nil, err
	}
	if err := validateAgainst(r.Context(), logEntrySchema, body); err != nil {
		return in, nil, err
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return in, nil, models.NewValidationError("body", "invalid json")
	}
	return in, nil, nil
}
