package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/challenge"
	"github.com/dmitrijs2005/gatekeeper/internal/server/governor"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type placeRequest struct {
	Email string `json:"email"`
	Piece int    `json:"piece"`
	Slot  int    `json:"slot"`
}

type slotView struct {
	Piece  *int `json:"piece"`
	Filled bool `json:"filled"`
}

type challengeView struct {
	Pieces    int        `json:"pieces"`
	Pool      []int      `json:"pool"`
	Slots     []slotView `json:"slots"`
	Completed bool       `json:"completed"`
}

type loginResponse struct {
	Outcome   string         `json:"outcome"`
	Remaining int            `json:"remaining,omitempty"`
	Account   *accountView   `json:"account,omitempty"`
	Challenge *challengeView `json:"challenge,omitempty"`
}

type accountView struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	FailedAttempts int       `json:"failed_attempts"`
	CreatedAt      time.Time `json:"created_at"`
}

type statsView struct {
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	FailedAttempts   int       `json:"failed_attempts"`
	CreatedAt        time.Time `json:"created_at"`
	SuccessfulLogins int       `json:"successful_logins"`
	FailedLogins     int       `json:"failed_logins"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newChallengeView(c *challenge.Session) *challengeView {
	slots := c.Slots()
	out := &challengeView{
		Pieces:    c.Pieces(),
		Pool:      c.Pool(),
		Slots:     make([]slotView, len(slots)),
		Completed: c.Completed(),
	}
	for i, slot := range slots {
		if slot.Filled {
			piece := slot.Piece
			out.Slots[i] = slotView{Piece: &piece, Filled: true}
		}
	}
	return out
}

func newAccountView(a *models.Account) *accountView {
	return &accountView{
		Name:           a.Name,
		Email:          a.Email,
		FailedAttempts: a.FailedAttempts,
		CreatedAt:      a.CreatedAt,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(context.Background(), "response encoding error", "error", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.access.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := loginResponse{Outcome: res.Outcome.Kind.String()}
	status := http.StatusOK

	switch res.Outcome.Kind {
	case governor.OutcomeSuccess:
		resp.Account = newAccountView(res.Outcome.Account)
	case governor.OutcomeFailed:
		resp.Remaining = res.Outcome.Remaining
		status = http.StatusUnauthorized
	case governor.OutcomeLockedOut:
		resp.Challenge = newChallengeView(res.Challenge)
		status = http.StatusLocked
	case governor.OutcomeNotFound:
		status = http.StatusNotFound
	}

	s.writeJSON(w, status, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.access.Register(r.Context(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusCreated)
	case errors.Is(err, common.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, common.ErrDuplicateEmail):
		s.writeError(w, http.StatusConflict, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

// session resolves the active challenge for the request's email, writing
// the error response itself when there is none.
func (s *Server) session(w http.ResponseWriter, email string) (*challenge.Session, bool) {
	c, ok := s.access.Challenge(email)
	if !ok {
		s.writeError(w, http.StatusNotFound, common.ErrNoActiveChallenge)
		return nil, false
	}
	return c, true
}

func (s *Server) handleVerifyPlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	c, ok := s.session(w, req.Email)
	if !ok {
		return
	}

	if err := c.Place(req.Piece, req.Slot); err != nil {
		if errors.Is(err, common.ErrChallengeDone) {
			s.writeError(w, http.StatusConflict, err)
			return
		}
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, http.StatusOK, newChallengeView(c))
}

func (s *Server) handleVerifyReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	c, ok := s.session(w, req.Email)
	if !ok {
		return
	}

	if err := c.Reset(); err != nil {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newChallengeView(c))
}

func (s *Server) handleVerifyState(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	c, ok := s.session(w, req.Email)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, newChallengeView(c))
}

func (s *Server) handleVerifyComplete(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.access.CompleteVerification(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.GetAllAccounts(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]accountView, len(accounts))
	for i := range accounts {
		out[i] = *newAccountView(&accounts[i])
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAccountStats(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		s.writeError(w, http.StatusBadRequest, common.ErrValidation)
		return
	}

	stats, err := s.store.Stats(r.Context(), email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statsView{
		Name:             stats.Name,
		Email:            stats.Email,
		FailedAttempts:   stats.FailedAttempts,
		CreatedAt:        stats.CreatedAt,
		SuccessfulLogins: stats.SuccessfulLogins,
		FailedLogins:     stats.FailedLogins,
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		s.writeError(w, http.StatusBadRequest, common.ErrValidation)
		return
	}

	affected, err := s.store.Delete(r.Context(), email)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !affected {
		s.writeError(w, http.StatusNotFound, common.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
