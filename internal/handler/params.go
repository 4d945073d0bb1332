package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/car-reservation/internal/domain"
)

// pathUUID binds a {name} path segment as a UUID, the same way generated
// oapi-codegen routers bind path parameters.
func pathUUID(r *http.Request, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return openapi_types.UUID{}, fmt.Errorf("invalid format for parameter %s: %w", name, domain.ErrInvalidID)
	}
	return id, nil
}

func pathCarID(r *http.Request) (domain.CarID, error) {
	id, err := pathUUID(r, "carId")
	return domain.CarIDFrom(id), err
}

func pathReservationID(r *http.Request) (domain.ReservationID, error) {
	id, err := pathUUID(r, "reservationId")
	return domain.ReservationIDFrom(id), err
}

func pathCustomerID(r *http.Request) (domain.CustomerID, error) {
	id, err := pathUUID(r, "customerId")
	return domain.CustomerIDFrom(id), err
}

// periodQuery binds the required ?start=&end= date pair.
func periodQuery(r *http.Request) (start, end openapi_types.Date, err error) {
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "start", q, &start); err != nil {
		return start, end, fmt.Errorf("invalid format for parameter start: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, true, "end", q, &end); err != nil {
		return start, end, fmt.Errorf("invalid format for parameter end: %w", err)
	}
	return start, end, nil
}

// pageQuery binds the optional ?page=&limit= pair.
func pageQuery(r *http.Request) (domain.PaginationParams, error) {
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		return domain.PaginationParams{}, fmt.Errorf("invalid format for parameter page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		return domain.PaginationParams{}, fmt.Errorf("invalid format for parameter limit: %w", err)
	}
	return domain.NewPaginationParams(page, limit), nil
}

// optionalStringQuery binds an optional string query parameter.
func optionalStringQuery(r *http.Request, name string) (*string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}

var errBodyRequired = errors.New("request body is required")

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errBodyRequired
		}
		return fmt.Errorf("malformed request body: %w", err)
	}
	return nil
}

// bodyError answers a request whose body could not be decoded. A body cut
// short by the max-body-size middleware gets 413; anything else gets 422.
func bodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	requestError(w, err.Error())
}
