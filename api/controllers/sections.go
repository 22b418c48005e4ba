package controllers

import (
	"mime"
	"net/http"

	"github.com/futamarket/market-backend/api/responses"
	"github.com/futamarket/market-backend/api/validators"
	section "github.com/futamarket/market-backend/internal/sections"
	"github.com/futamarket/market-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type sectionRequest struct {
	Title string `json:"title"`
}

// decodeSectionTitle reads the title from a JSON or form body capped at maxBytes.
func decodeSectionTitle(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := validators.ParseMultipart(w, r, maxBytes); err != nil {
			return "", err
		}
		title, _ := validators.FormValue(r, "title")
		return title, nil
	default:
		if r.ContentLength == 0 {
			return "", nil
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		var payload sectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return "", err
		}
		return payload.Title, nil
	}
}

func ListSections(svc section.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sections, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sections)
	}
}

func CreateSection(svc section.Service, logg *logger.Logger, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title, err := decodeSectionTitle(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), title)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, created)
	}
}

func UpdateSection(svc section.Service, logg *logger.Logger, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title, err := decodeSectionTitle(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), chi.URLParam(r, "id"), title)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func DeleteSection(svc section.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Section deleted")
	}
}
