package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/neexbeast/clima-rs/internal/apperr"
	"github.com/neexbeast/clima-rs/internal/bulletin"
)

const maxBulletinBody = 1 << 20

func bulletinID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("bulletin id", "id must be a UUID")
	}
	return id, nil
}

func decodeBulletin(w http.ResponseWriter, r *http.Request) (bulletin.Input, error) {
	var in bulletin.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBulletinBody))
	if err := dec.Decode(&in); err != nil {
		return in, apperr.Validation("bulletin body", "invalid JSON: "+err.Error())
	}
	return in, nil
}

func (h *Handlers) writeBulletinError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, bulletin.ErrNotFound) {
		h.log.Warn("bulletin not found", "path", r.URL.Path)
		writeJSON(w, http.StatusNotFound, errorBody{
			Error:   string(apperr.KindNotFound),
			Message: "Boletim não encontrado.",
		})
		return
	}
	h.writeError(w, r, err)
}

// ListBulletins handles GET /api/v1/bulletins.
func (h *Handlers) ListBulletins(w http.ResponseWriter, r *http.Request) {
	list, err := h.bulletins.List(r.Context())
	if err != nil {
		h.writeBulletinError(w, r, err)
		return
	}
	if list == nil {
		list = []bulletin.Bulletin{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetBulletin handles GET /api/v1/bulletins/{id}.
func (h *Handlers) GetBulletin(w http.ResponseWriter, r *http.Request) {
	id, err := bulletinID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.bulletins.Get(r.Context(), id)
	if err != nil {
		h.writeBulletinError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// CreateBulletin handles POST /api/v1/admin/bulletins.
func (h *Handlers) CreateBulletin(w http.ResponseWriter, r *http.Request) {
	in, err := decodeBulletin(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.bulletins.Create(r.Context(), in)
	if err != nil {
		h.writeBulletinError(w, r, err)
		return
	}
	h.log.Info("bulletin created", "id", b.ID)
	writeJSON(w, http.StatusCreated, b)
}

// UpdateBulletin handles PUT /api/v1/admin/bulletins/{id}.
func (h *Handlers) UpdateBulletin(w http.ResponseWriter, r *http.Request) {
	id, err := bulletinID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := decodeBulletin(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.bulletins.Update(r.Context(), id, in)
	if err != nil {
		h.writeBulletinError(w, r, err)
		return
	}
	h.log.Info("bulletin updated", "id", id)
	writeJSON(w, http.StatusOK, b)
}

// DeleteBulletin handles DELETE /api/v1/admin/bulletins/{id}.
func (h *Handlers) DeleteBulletin(w http.ResponseWriter, r *http.Request) {
	id, err := bulletinID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.bulletins.Delete(r.Context(), id); err != nil {
		h.writeBulletinError(w, r, err)
		return
	}
	h.log.Info("bulletin deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
