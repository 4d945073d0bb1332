package handler

import (
	"net/http"

	"github.com/pkordes/car-reservation/internal/domain"
)

type SaveProfileRequest struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Address   *Address `json:"address"`
}

// GetProfile handles GET /api/customers/{customerId}/profile.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathCustomerID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	p, err := s.profiles.Get(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profileToResponse(p))
}

// SaveProfile handles PUT /api/customers/{customerId}/profile.
// The profile is replaced as a whole.
func (s *Server) SaveProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathCustomerID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var body SaveProfileRequest
	if err := decodeBody(r, &body); err != nil {
		bodyError(w, err)
		return
	}
	addr, err := body.Address.toDomain()
	if err != nil {
		requestError(w, unwrapMessage(err))
		return
	}
	profile, err := domain.NewUserProfile(body.FirstName, body.LastName, body.Phone, addr)
	if err != nil {
		requestError(w, unwrapMessage(err))
		return
	}

	saved, err := s.profiles.Save(r.Context(), id, profile)
	if err != nil {
		s.serviceError(w, r, err, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profileToResponse(saved))
}
