package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-airforms/pkg/airtable"
	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/store"
	"github.com/goliatone/go-airforms/pkg/submission"
	"github.com/goliatone/go-airforms/pkg/visibility"
)

type answersRequest struct {
	Answers model.Answers `json:"answers" validate:"required"`
}

type ownerView struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type publicForm struct {
	model.Form
	Owner *ownerView `json:"owner,omitempty"`
}

type submitResponse struct {
	Success      bool   `json:"success"`
	RecordID     string `json:"recordId"`
	SubmissionID string `json:"submissionId"`
	Message      string `json:"message"`
}

// previewResponse reports the live state of a form for the answers so far.
type previewResponse struct {
	Visible []string          `json:"visible"`
	Hidden  int               `json:"hidden"`
	Errors  visibility.Errors `json:"errors"`
}

func newPreviewResponse(preview submission.Preview) previewResponse {
	ids := make([]string, 0, len(preview.Visible))
	for _, field := range preview.Visible {
		ids = append(ids, field.FieldID)
	}
	return previewResponse{Visible: ids, Hidden: preview.Hidden, Errors: preview.Errors}
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, err := s.forms.GetForm(ctx, chi.URLParam(r, "formID"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	view := publicForm{Form: form}
	if owner, err := s.store.GetUser(ctx, form.OwnerID); err == nil {
		view.Owner = &ownerView{Name: owner.Name, Email: owner.Email}
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.submissions.Submit(r.Context(), chi.URLParam(r, "formID"), req.Answers)
	if err != nil {
		var verr *submission.ValidationError
		var apiErr *airtable.APIError
		switch {
		case errors.As(err, &verr):
			fields := make(map[string][]string, len(verr.Fields))
			for id, message := range verr.Fields {
				fields[id] = []string{message}
			}
			writeJSON(w, http.StatusBadRequest, errorBody{
				Error:  "Validation failed",
				Errors: verr.Messages(),
				Fields: fields,
			})
		case errors.Is(err, submission.ErrOwnerNotFound):
			s.logger.Error("submit: form owner missing", "form", chi.URLParam(r, "formID"), "error", err)
			writeError(w, http.StatusInternalServerError, "Form owner account is unavailable")
		case errors.Is(err, store.ErrNotFound) && result.RecordID == "":
			writeError(w, http.StatusNotFound, "Form not found")
		case errors.As(err, &apiErr):
			s.logger.Error("submit: airtable rejected record", "status", apiErr.Status, "type", apiErr.Type, "error", err)
			writeError(w, http.StatusBadGateway, "Could not create Airtable record")
		default:
			s.logger.Error("submit: failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Submission failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		Success:      true,
		RecordID:     result.RecordID,
		SubmissionID: result.SubmissionID,
		Message:      "Form submitted successfully",
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	preview, err := s.submissions.Preview(r.Context(), chi.URLParam(r, "formID"), req.Answers)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPreviewResponse(preview))
}
