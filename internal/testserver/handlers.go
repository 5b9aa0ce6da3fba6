package testserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	var found *user
	for _, id := range s.order {
		if u := s.users[id]; u.profile.Email == req.Email {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil || password.Verify(found.hash, req.Password) != nil {
		fail(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	render.JSON(w, r, map[string]any{
		"token": s.Token(found.profile.ID, found.profile.Role),
		"type":  "Bearer",
	})
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" || req.Password != req.PasswordConfirmation {
		fail(w, r, http.StatusBadRequest, "password confirmation does not match")
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.profile.Email == req.Email {
			s.mu.Unlock()
			fail(w, r, http.StatusConflict, "email already registered")
			return
		}
	}
	s.mu.Unlock()

	p := s.AddUser(models.Profile{Name: req.Name, Email: req.Email, CPF: req.CPF}, req.Password)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, p)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id, _ := caller(r)
	s.writeUser(w, r, id)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.writeUser(w, r, chi.URLParam(r, "id"))
}

func (s *Server) writeUser(w http.ResponseWriter, r *http.Request, id string) {
	s.mu.Lock()
	u, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		fail(w, r, http.StatusNotFound, "user not found")
		return
	}
	render.JSON(w, r, u.profile)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	callerID, role := caller(r)
	if callerID != id && role != models.RoleAdmin {
		fail(w, r, http.StatusForbidden, "cannot update another user")
		return
	}

	var upd models.ProfileUpdate
	if err := render.DecodeJSON(r.Body, &upd); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	var hash string
	if upd.Password != "" {
		var err error
		if hash, err = password.Hash(upd.Password); err != nil {
			fail(w, r, http.StatusInternalServerError, "internal error")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		fail(w, r, http.StatusNotFound, "user not found")
		return
	}
	if upd.Name != "" {
		u.profile.Name = upd.Name
	}
	if upd.Email != "" {
		u.profile.Email = upd.Email
	}
	if upd.CPF != "" {
		u.profile.CPF = upd.CPF
	}
	if hash != "" {
		u.hash = hash
	}
	render.JSON(w, r, u.profile)
}

func (s *Server) listAll(w http.ResponseWriter, r *http.Request) {
	if _, role := caller(r); role != models.RoleAdmin {
		fail(w, r, http.StatusForbidden, "admin role required")
		return
	}
	s.writePage(w, r, func(models.Address) bool { return true })
}

func (s *Server) listOwned(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userId")
	if id, role := caller(r); id != owner && role != models.RoleAdmin {
		fail(w, r, http.StatusForbidden, "cannot list another user's addresses")
		return
	}
	s.writePage(w, r, func(a models.Address) bool { return a.User.ID == owner })
}

// writePage отдаёт страницу в формате Spring Data: page с нуля, size по умолчанию 10.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, keep func(models.Address) bool) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}

	s.mu.Lock()
	var matched []models.Address
	for _, a := range s.addresses {
		if keep(a) {
			matched = append(matched, a)
		}
	}
	s.mu.Unlock()

	total := len(matched)
	from := min(page*size, total)
	to := min(from+size, total)
	content := append([]models.Address{}, matched[from:to]...)
	totalPages := (total + size - 1) / size

	render.JSON(w, r, models.AddressPage{
		Content:          content,
		Number:           page,
		Size:             size,
		TotalElements:    int64(total),
		TotalPages:       totalPages,
		NumberOfElements: len(content),
		Sort:             models.Sort{Empty: true, Unsorted: true},
		Pageable: models.Pageable{
			Offset:     int64(page * size),
			Sort:       models.Sort{Empty: true, Unsorted: true},
			PageNumber: page,
			PageSize:   size,
			Paged:      true,
		},
		First: page == 0,
		Last:  page >= totalPages-1,
		Empty: len(content) == 0,
	})
}

func (s *Server) createAddress(w http.ResponseWriter, r *http.Request) {
	var draft models.AddressDraft
	if err := render.DecodeJSON(r.Body, &draft); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	id, role := caller(r)
	if draft.UserID == "" {
		draft.UserID = id
	}
	if draft.UserID != id && role != models.RoleAdmin {
		fail(w, r, http.StatusForbidden, "cannot create address for another user")
		return
	}

	a := s.AddAddress(draft.UserID, models.Address{
		ID:         uuid.NewString(),
		ZipCode:    draft.ZipCode,
		Street:     draft.Street,
		Complement: draft.Complement,
		Unit:       draft.Unit,
		District:   draft.District,
		City:       draft.City,
		StateAbbr:  draft.StateAbbr,
		Region:     draft.Region,
		IBGECode:   draft.IBGECode,
		GIACode:    draft.GIACode,
		AreaCode:   draft.AreaCode,
		SIAFICode:  draft.SIAFICode,
	})
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, a)
}

func (s *Server) updateAddress(w http.ResponseWriter, r *http.Request) {
	var patch models.AddressPatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	id, role := caller(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.addresses {
		if a.ID != patch.ID {
			continue
		}
		if a.User.ID != id && role != models.RoleAdmin {
			fail(w, r, http.StatusForbidden, "cannot update another user's address")
			return
		}
		a.ZipCode, a.Street, a.Complement, a.Unit = patch.ZipCode, patch.Street, patch.Complement, patch.Unit
		a.District, a.City, a.StateAbbr, a.Region = patch.District, patch.City, patch.StateAbbr, patch.Region
		a.IBGECode, a.GIACode, a.AreaCode, a.SIAFICode = patch.IBGECode, patch.GIACode, patch.AreaCode, patch.SIAFICode
		s.addresses[i] = a
		render.JSON(w, r, a)
		return
	}
	fail(w, r, http.StatusNotFound, "address not found")
}

func (s *Server) deleteAddress(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "id")
	id, role := caller(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.addresses {
		if a.ID != target {
			continue
		}
		if a.User.ID != id && role != models.RoleAdmin {
			fail(w, r, http.StatusForbidden, "cannot delete another user's address")
			return
		}
		s.addresses = append(s.addresses[:i], s.addresses[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	fail(w, r, http.StatusNotFound, "address not found")
}
