package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/store"
)

type createFormRequest struct {
	Name      string        `json:"name" validate:"required,max=200"`
	BaseID    string        `json:"baseId" validate:"required"`
	BaseName  string        `json:"baseName"`
	TableID   string        `json:"tableId" validate:"required"`
	TableName string        `json:"tableName"`
	Fields    []model.Field `json:"fields" validate:"required"`
}

type updateFormRequest struct {
	Name   *string        `json:"name" validate:"omitempty,max=200"`
	Fields *[]model.Field `json:"fields"`
}

// prepareForm sanitises, checks and re-indexes a form before it is saved.
func prepareForm(form model.Form) (model.Form, error) {
	form = model.SanitizeForm(form)
	form.Fields = model.NormalizeOrder(form.Fields)
	if err := model.ValidateForm(form); err != nil {
		return model.Form{}, err
	}
	return form, nil
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(r.Context())

	form, err := prepareForm(model.Form{
		OwnerID:   user.ID,
		Name:      req.Name,
		BaseID:    req.BaseID,
		BaseName:  req.BaseName,
		TableID:   req.TableID,
		TableName: req.TableName,
		Fields:    req.Fields,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.CreateForm(r.Context(), form)
	if err != nil {
		s.logger.Error("forms: create", "owner", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Could not save form")
		return
	}
	s.logger.Info("forms: created", "form", saved.ID, "owner", user.ID, "fields", len(saved.Fields))
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	forms, err := s.store.ListForms(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("forms: list", "owner", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Could not load forms")
		return
	}
	if forms == nil {
		forms = []model.Form{}
	}
	writeJSON(w, http.StatusOK, forms)
}

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	var req updateFormRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(r.Context())

	existing, err := s.store.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil || existing.OwnerID != user.ID {
		s.writeLookupError(w, err)
		return
	}
	if req.Name != nil && *req.Name != "" {
		existing.Name = *req.Name
	}
	if req.Fields != nil {
		existing.Fields = *req.Fields
	}

	form, err := prepareForm(existing)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.forms.UpdateForm(r.Context(), form)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := s.forms.DeleteForm(r.Context(), user.ID, chi.URLParam(r, "formID")); err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Form deleted successfully"})
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	form, err := s.store.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil || form.OwnerID != user.ID {
		s.writeLookupError(w, err)
		return
	}
	submissions, err := s.store.ListSubmissions(r.Context(), form.ID)
	if err != nil {
		s.logger.Error("forms: list submissions", "form", form.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Could not load submissions")
		return
	}
	if submissions == nil {
		submissions = []model.Submission{}
	}
	writeJSON(w, http.StatusOK, submissions)
}

// writeLookupError maps a missing or foreign form to 404. A nil err means
// the form exists but belongs to someone else.
func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	if err == nil || errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	s.logger.Error("forms: lookup", "error", err)
	writeError(w, http.StatusInternalServerError, "Could not load form")
}
