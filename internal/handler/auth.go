package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joblane/platform/internal/constants"
	"github.com/joblane/platform/internal/dto"
	apperrors "github.com/joblane/platform/internal/errors"
	"github.com/joblane/platform/internal/service"
	ctxutil "github.com/joblane/platform/pkg/context"
	"github.com/joblane/platform/pkg/logger"
)

type AuthHandler struct {
	authService   *service.AuthService
	accessMaxAge  int
	refreshMaxAge int
	secureCookies bool
}

func NewAuthHandler(authService *service.AuthService, tokens *service.TokenService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		accessMaxAge:  int(tokens.AccessTTL().Seconds()),
		refreshMaxAge: int(tokens.RefreshTTL().Seconds()),
		secureCookies: secureCookies,
	}
}

// Register handles new account creation
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Register")

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid registration request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	user, err := h.authService.Register(ctx, &req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Registration failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusCreated, constants.BuildDataResponse("Registration successful", user))
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Login")

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	response, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Authentication failed", apperrors.GetErrorMessage(err)))
		return
	}

	h.setSessionCookies(c, response.Token, response.RefreshToken)

	c.JSON(http.StatusOK, response)
}

// RefreshToken rotates the token pair. The refresh token is taken from the
// JSON body when present, otherwise from the refreshToken cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "RefreshToken")

	var req dto.RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)

	presented := req.RefreshToken
	if presented == "" {
		if cookie, err := c.Cookie(constants.CookieRefreshToken); err == nil {
			presented = cookie
		}
	}
	if presented == "" {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", "missing refresh token"))
		return
	}

	response, err := h.authService.Refresh(ctx, presented)
	if err != nil {
		logger.WarnWithContext(ctx, "Token refresh failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Token refresh failed", apperrors.GetErrorMessage(err)))
		return
	}

	h.setSessionCookies(c, response.Token, response.RefreshToken)

	c.JSON(http.StatusOK, response)
}

// Logout invalidates the refresh slot and clears session cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Logout")

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	if err := h.authService.Logout(ctx, userID); err != nil {
		logger.ErrorWithContext(ctx, "Failed to logout user").
			Int("user_id", int(userID)).
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Logout failed", apperrors.GetErrorMessage(err)))
		return
	}

	h.clearSessionCookies(c)

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Logout successful"))
}

// VerifyEmail consumes a verification token from the query string.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VerifyEmail")

	var req dto.VerifyEmailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", "missing verification token"))
		return
	}

	user, err := h.authService.VerifyEmail(ctx, req.Token)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Email verification failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse("Email verified", user))
}

// setSessionCookies writes the token cookies plus the non-HttpOnly session
// marker the page gate reads. The token cookies stay HttpOnly.
func (h *AuthHandler) setSessionCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetCookie(constants.CookieAccessToken, accessToken, h.accessMaxAge, "/", "", h.secureCookies, true)
	c.SetCookie(constants.CookieRefreshToken, refreshToken, h.refreshMaxAge, "/", "", h.secureCookies, true)
	c.SetCookie(constants.CookieSession, "1", h.refreshMaxAge, "/", "", h.secureCookies, false)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetCookie(constants.CookieAccessToken, "", -1, "/", "", h.secureCookies, true)
	c.SetCookie(constants.CookieRefreshToken, "", -1, "/", "", h.secureCookies, true)
	c.SetCookie(constants.CookieSession, "", -1, "/", "", h.secureCookies, false)
}
