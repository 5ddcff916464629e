package controllers

import (
	"net/http"
	"strings"

	"github.com/localbasket/localbasket-backend/api/responses"
	"github.com/localbasket/localbasket-backend/api/validators"
	complaintsvc "github.com/localbasket/localbasket-backend/internal/complaints"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/logger"
)

// ComplaintsCreate opens a support ticket for the caller.
func ComplaintsCreate(svc complaintsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaint service unavailable"))
			return
		}

		userID, err := actorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload complaintsvc.CreateComplaintInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ComplaintsList returns the caller's tickets.
func ComplaintsList(svc complaintsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaint service unavailable"))
			return
		}

		userID, err := actorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tickets, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tickets)
	}
}

// AdminComplaintsList returns all tickets, optionally filtered by status.
func AdminComplaintsList(svc complaintsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaint service unavailable"))
			return
		}

		status := strings.TrimSpace(r.URL.Query().Get("status"))
		tickets, err := svc.ListAll(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tickets)
	}
}

// AdminComplaintRespond applies the back-office update to a ticket.
func AdminComplaintRespond(svc complaintsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaint service unavailable"))
			return
		}

		adminID, err := actorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		complaintID, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload complaintsvc.RespondInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Respond(r.Context(), complaintID, adminID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
