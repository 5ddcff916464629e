package controllers

import (
	"net/http"
	"strings"

	"github.com/localbasket/localbasket-backend/api/responses"
	"github.com/localbasket/localbasket-backend/api/validators"
	locationsvc "github.com/localbasket/localbasket-backend/internal/location"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/geo"
	"github.com/localbasket/localbasket-backend/pkg/logger"
)

// AddressGet returns the caller's stored address, or null when none exists.
func AddressGet(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location service unavailable"))
			return
		}

		userID, err := actorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetAddress(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// LocationReverse resolves a picked map point into address fields.
func LocationReverse(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location service unavailable"))
			return
		}

		query := r.URL.Query()
		if strings.TrimSpace(query.Get("lat")) == "" || strings.TrimSpace(query.Get("lng")) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "lat and lng are required"))
			return
		}
		lat, err := validators.ParseQueryFloat(r, "lat", 0, -90, 90)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lng, err := validators.ParseQueryFloat(r, "lng", 0, -180, 180)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fields, err := svc.ReversePoint(r.Context(), geo.DisplayPoint{Lat: lat, Lng: lng})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fields)
	}
}

// AddressUpsert saves the caller's single delivery address.
func AddressUpsert(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location service unavailable"))
			return
		}

		userID, err := actorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload locationsvc.UpsertAddressInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpsertAddress(r.Context(), userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// NearbyProducts runs the proximity search around the caller's stored
// address.
func NearbyProducts(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location service unavailable"))
			return
		}

		userID, err := actorID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := nearbyParamsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.NearbyForUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

// LocationSearch runs the proximity search around an explicit origin point.
func LocationSearch(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "location service unavailable"))
			return
		}

		var payload locationsvc.SearchByLocationInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.SearchByLocation(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

func nearbyParamsFromQuery(r *http.Request) (locationsvc.NearbyParams, error) {
	maxDistance, err := validators.ParseQueryFloat(r, "maxDistance", 0, 0, 40075)
	if err != nil {
		return locationsvc.NearbyParams{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 500)
	if err != nil {
		return locationsvc.NearbyParams{}, err
	}
	return locationsvc.NearbyParams{
		MaxDistanceKm: maxDistance,
		Category:      strings.TrimSpace(r.URL.Query().Get("category")),
		Brand:         strings.TrimSpace(r.URL.Query().Get("brand")),
		Limit:         limit,
	}, nil
}
