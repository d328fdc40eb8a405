package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/http/response"
	"github.com/krishisetu/krishisetu/internal/kv"
	"github.com/krishisetu/krishisetu/internal/service"
	"github.com/krishisetu/krishisetu/internal/session"
)

type AuthHandler struct {
	svc        service.AuthService
	sessions   *session.Manager
	otpLimiter *kv.RateLimiter
	production bool
}

func NewAuthHandler(svc service.AuthService, sessions *session.Manager, otpLimiter *kv.RateLimiter, production bool) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions, otpLimiter: otpLimiter, production: production}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/farmer", func(r chi.Router) {
		r.Post("/register", h.registerFarmer)
		r.Post("/login", h.loginFarmer)
		r.Post("/login/send-otp", h.sendLoginOTP)
		r.Post("/login/verify-otp", h.verifyLoginOTP)
		r.Post("/forgot-password/send-otp", h.sendResetOTP)
		r.Post("/forgot-password/verify-otp", h.verifyResetOTP)
		r.Post("/forgot-password/reset", h.resetPassword)
		r.Post("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(h.optionalSession)
			r.Get("/me", h.me)
		})
		r.Group(func(r chi.Router) {
			r.Use(SessionAuth(h.sessions, domain.RoleFarmer))
			r.Patch("/me", h.updateProfile)
		})
	})

	r.Route("/expert", func(r chi.Router) {
		r.Post("/login", h.loginExpert)
		r.Post("/logout", h.logout)
		r.Group(func(r chi.Router) {
			r.Use(h.optionalSession)
			r.Get("/me", h.me)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", h.loginAdmin)
		r.Post("/logout", h.logout)
		r.Group(func(r chi.Router) {
			r.Use(h.optionalSession)
			r.Get("/me", h.me)
		})
	})

	return r
}

// optionalSession resolves a session if present but lets the request through
// either way. /me answers {authenticated:false} instead of an error body.
func (h *AuthHandler) optionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, err := h.sessions.FromRequest(r); err == nil {
			r = r.WithContext(withSession(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AuthHandler) registerFarmer(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterFarmerRequest
	if !decode(w, r, &req) {
		return
	}

	farmer, sess, err := h.svc.RegisterFarmer(r.Context(), &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	h.sessions.SetCookie(w, sess)
	response.JSON(w, http.StatusCreated, farmer.ToInfo())
}

func (h *AuthHandler) loginFarmer(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordLoginRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Phone == "" || req.Password == "" {
		response.BadRequest(w, "phone and password are required")
		return
	}

	farmer, sess, err := h.svc.LoginFarmer(r.Context(), req.Phone, req.Password)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	h.sessions.SetCookie(w, sess)
	response.JSON(w, http.StatusOK, farmer.ToInfo())
}

func (h *AuthHandler) loginExpert(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordLoginRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "username and password are required")
		return
	}

	expert, sess, err := h.svc.LoginExpert(r.Context(), req.Username, req.Password)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	h.sessions.SetCookie(w, sess)
	response.JSON(w, http.StatusOK, expert.ToInfo())
}

func (h *AuthHandler) loginAdmin(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordLoginRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "username and password are required")
		return
	}

	admin, sess, err := h.svc.LoginAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	h.sessions.SetCookie(w, sess)
	response.JSON(w, http.StatusOK, map[string]any{"id": admin.ID, "username": admin.Username, "name": admin.Name})
}

func (h *AuthHandler) sendLoginOTP(w http.ResponseWriter, r *http.Request) {
	h.sendOTP(w, r, h.svc.SendLoginOTP)
}

func (h *AuthHandler) sendResetOTP(w http.ResponseWriter, r *http.Request) {
	h.sendOTP(w, r, h.svc.SendResetOTP)
}

func (h *AuthHandler) sendOTP(w http.ResponseWriter, r *http.Request, send func(ctx context.Context, phone string) (string, error)) {
	var req domain.SendOTPRequest
	if !decode(w, r, &req) {
		return
	}
	if !domain.IsValidPhone(req.Phone) {
		response.BadRequest(w, "must be a 10-digit mobile number starting 6-9")
		return
	}
	if !h.otpLimiter.Allow(r.Context(), "otp:"+req.Phone) {
		response.RateLimit(w, "too many codes requested, try again in a minute")
		return
	}

	code, err := send(r.Context(), req.Phone)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	resp := map[string]string{"message": "otp sent"}
	if !h.production {
		resp["devOtp"] = code
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) verifyLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Phone == "" || req.OTP == "" {
		response.BadRequest(w, "phone and otp are required")
		return
	}

	farmer, sess, err := h.svc.VerifyLoginOTP(r.Context(), req.Phone, req.OTP)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	h.sessions.SetCookie(w, sess)
	response.JSON(w, http.StatusOK, farmer.ToInfo())
}

func (h *AuthHandler) verifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Phone == "" || req.OTP == "" {
		response.BadRequest(w, "phone and otp are required")
		return
	}

	if err := h.svc.VerifyResetOTP(r.Context(), req.Phone, req.OTP); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "otp verified"})
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.svc.ResetPassword(r.Context(), &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
		if err := h.svc.Logout(r.Context(), c.Value); err != nil {
			response.FromError(w, r, err)
			return
		}
	}
	h.sessions.ClearCookie(w)
	response.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess == nil {
		response.JSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}

	who, err := h.svc.Whoami(r.Context(), sess)
	if err != nil {
		response.JSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"authenticated": true, "account": who, "role": sess.Role})
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req domain.UpdateFarmerRequest
	if !decode(w, r, &req) {
		return
	}

	farmer, err := h.svc.UpdateFarmer(r.Context(), sess.AccountID, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, farmer.ToInfo())
}
