// Package api holds the helpers shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/mytheresa/parts-catalog/app/assets"
	"github.com/mytheresa/parts-catalog/models"
)

// DefaultMaxUpload bounds the size of a form request body.
const DefaultMaxUpload = 10 << 20

// Responder writes JSON responses, logging failures on its logger.
type Responder struct {
	logger *log.Logger
}

func NewResponder(logger *log.Logger) Responder {
	if logger == nil {
		logger = log.Default()
	}
	return Responder{logger: logger}
}

func (rs Responder) OKResponse(w http.ResponseWriter, data any) {
	rs.WriteJSON(w, http.StatusOK, data)
}

func (rs Responder) WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Printf("encode response: %v", err)
	}
}

func (rs Responder) ErrorResponse(w http.ResponseWriter, status int, message string) {
	rs.WriteJSON(w, status, map[string]string{"error": message})
}

// Messages are the user facing texts for each failure class. InUse falls
// back to Conflict when empty.
type Messages struct {
	NotFound  string
	Conflict  string
	InUse     string
	Invalid   string
	Unhandled string
}

// Failure writes the response for a service error: 404, 409 and 400 for the
// errors the user can act on, 500 with a generic message for the rest.
func (rs Responder) Failure(w http.ResponseWriter, err error, msg Messages) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		rs.ErrorResponse(w, http.StatusNotFound, msg.NotFound)
	case errors.Is(err, models.ErrUniqueViolation):
		rs.ErrorResponse(w, http.StatusConflict, msg.Conflict)
	case errors.Is(err, models.ErrInUse):
		inUse := msg.InUse
		if inUse == "" {
			inUse = msg.Conflict
		}
		rs.ErrorResponse(w, http.StatusConflict, inUse)
	case errors.Is(err, models.ErrInvalidReference):
		rs.ErrorResponse(w, http.StatusBadRequest, msg.Invalid)
	default:
		rs.logger.Printf("%s: %v", msg.Unhandled, err)
		rs.ErrorResponse(w, http.StatusInternalServerError, msg.Unhandled)
	}
}

// FormFailure answers a request whose form could not be parsed.
func (rs Responder) FormFailure(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		rs.ErrorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	rs.ErrorResponse(w, http.StatusBadRequest, "Invalid form body")
}

// PathID parses the {id} path value.
func PathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ParseForm accepts both multipart and urlencoded bodies of at most maxBytes.
func ParseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	err := r.ParseMultipartForm(maxBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// FormUpload returns the file sent in field, or nil when the form has none.
// The returned func closes the file and is safe to call in every case.
func FormUpload(r *http.Request, field string) (*assets.Upload, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return &assets.Upload{
		Field:    field,
		Filename: header.Filename,
		Body:     file,
	}, func() { file.Close() }, nil
}

// OptionalString returns nil for a blank form value.
func OptionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// OptionalID parses an optional numeric form or query value.
func OptionalID(v string) (*uint, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(v, 10, 0)
	if err != nil {
		return nil, err
	}
	u := uint(id)
	return &u, nil
}
