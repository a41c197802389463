package api

import (
	"errors"
	"net/http"

	"github.com/comigor/roomchat/internal/session"
)

// OTPRequest is the login form.
type OTPRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
}

// VerifyRequest carries the code the user typed.
type VerifyRequest struct {
	OTP string `json:"otp"`
}

// CurrentUser returns the logged-in user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.app.Session.Current(r.Context())
	if err != nil {
		h.Error(w, http.StatusUnauthorized, "not logged in")
		return
	}
	h.JSON(w, http.StatusOK, u)
}

// RequestOTP validates the login form and "sends" a code.
func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.app.Session.RequestOTP(req.Phone, req.CountryCode); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrOTPAlreadyRequested) {
			status = http.StatusConflict
		}
		h.Error(w, status, err.Error())
		return
	}
	h.JSON(w, http.StatusAccepted, map[string]string{"status": "OTP sent"})
}

// VerifyOTP completes the login.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	u, err := h.app.Session.VerifyOTP(r.Context(), req.OTP)
	switch {
	case errors.Is(err, session.ErrNoPendingLogin):
		h.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrInvalidOTP):
		h.Error(w, http.StatusBadRequest, err.Error())
	case err != nil:
		h.Error(w, http.StatusInternalServerError, "failed to log in")
	default:
		h.JSON(w, http.StatusOK, u)
	}
}

// Logout closes the open room and wipes stored state.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.app.Timeline.Close("")
	if err := h.app.Session.Logout(r.Context()); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	h.app.Sidebar.Refresh(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
