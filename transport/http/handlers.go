package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/service"
)

// AuthHandlers contains HTTP handlers for the auth endpoints.
type AuthHandlers struct {
	authService *service.AuthService
	serverName  string
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.AuthService, serverName string) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		serverName:  serverName,
	}
}

// loginRequest is the wire shape of POST /login. Which fields are required
// depends on the type string.
type loginRequest struct {
	Type       string `json:"type" binding:"required"`
	Identifier struct {
		Type string `json:"type"`
		User string `json:"user"`
	} `json:"identifier"`
	User      string `json:"user"` // deprecated alias for identifier.user
	Password  string `json:"password"`
	Token     string `json:"token"`
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`

	DeviceID                 string `json:"device_id"`
	InitialDeviceDisplayName string `json:"initial_device_display_name"`
}

// LoginTypes handles GET /login, advertising the supported methods.
func (h *AuthHandlers) LoginTypes(c *gin.Context) {
	types := h.authService.LoginTypes()
	flows := make([]gin.H, 0, len(types))
	for _, t := range types {
		flows = append(flows, gin.H{"type": t})
	}
	c.JSON(http.StatusOK, gin.H{"flows": flows})
}

// Challenge handles the nonce challenge request.
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errcode": "M_MISSING_PARAM", "error": "Invalid request"})
		return
	}

	challenge, err := h.authService.RequestChallenge(req.Address)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nonce":              challenge.Nonce,
		"message":            challenge.Message,
		"expires_in_seconds": challenge.ExpiresIn,
	})
}

// Login handles the login request. The method is resolved once from the
// type field; everything downstream switches on the variant.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errcode": "M_MISSING_PARAM", "error": "Invalid request"})
		return
	}

	method := core.ParseLoginMethod(req.Type)

	localpart := req.Identifier.User
	if localpart == "" {
		localpart = req.User
	}

	svcReq := service.LoginRequest{
		Method:                   method,
		Localpart:                localpart,
		Password:                 req.Password,
		Token:                    req.Token,
		AppserviceToken:          bearerToken(c),
		Address:                  req.Address,
		Signature:                req.Signature,
		Nonce:                    req.Nonce,
		DeviceID:                 req.DeviceID,
		InitialDeviceDisplayName: req.InitialDeviceDisplayName,
	}

	if method == core.MethodWalletSignature {
		if req.Address == "" || req.Signature == "" || req.Nonce == "" {
			writeError(c, core.ErrMissingParam)
			return
		}
	}

	session, err := h.authService.Login(c.Request.Context(), svcReq)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      h.fullUserID(session.UserID),
		"access_token": session.AccessToken,
		"device_id":    session.DeviceID,
		"home_server":  h.serverName,
	})
}

// Logout handles logout of the current device.
func (h *AuthHandlers) Logout(c *gin.Context) {
	session := sessionFromContext(c)
	if err := h.authService.Logout(c.Request.Context(), session); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// LogoutAll handles logout of every device of the user.
func (h *AuthHandlers) LogoutAll(c *gin.Context) {
	session := sessionFromContext(c)
	if err := h.authService.LogoutAll(c.Request.Context(), session); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// WhoAmI returns the authenticated user and device.
func (h *AuthHandlers) WhoAmI(c *gin.Context) {
	session := sessionFromContext(c)
	c.JSON(http.StatusOK, gin.H{
		"user_id":   h.fullUserID(session.UserID),
		"device_id": session.DeviceID,
	})
}

func (h *AuthHandlers) fullUserID(localpart string) string {
	return "@" + localpart + ":" + h.serverName
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// writeError maps service errors to HTTP statuses and Matrix-style error
// codes. Authentication failures share one status so the response does not
// reveal which check failed beyond the error text the core already chose.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	errcode := "M_UNKNOWN"

	switch {
	case errors.Is(err, core.ErrInvalidEncoding),
		errors.Is(err, core.ErrInvalidLength),
		errors.Is(err, core.ErrInvalidKey),
		errors.Is(err, core.ErrMissingParam):
		status = http.StatusBadRequest
		errcode = "M_INVALID_PARAM"

	case errors.Is(err, core.ErrInvalidLocalpart):
		status = http.StatusBadRequest
		errcode = "M_INVALID_USERNAME"

	case errors.Is(err, core.ErrUnknownLoginType):
		status = http.StatusBadRequest
		errcode = "M_UNKNOWN"

	case errors.Is(err, core.ErrUserDeactivated):
		status = http.StatusForbidden
		errcode = "M_USER_DEACTIVATED"

	case errors.Is(err, core.ErrNonceNotFound),
		errors.Is(err, core.ErrNonceExpired),
		errors.Is(err, core.ErrSignatureMismatch),
		errors.Is(err, core.ErrBadCredentials),
		errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrTokenRevoked),
		errors.Is(err, core.ErrNotInNamespace),
		errors.Is(err, core.ErrMissingAppservice),
		errors.Is(err, core.ErrFeatureDisabled):
		status = http.StatusForbidden
		errcode = "M_FORBIDDEN"
	}

	c.JSON(status, gin.H{"errcode": errcode, "error": err.Error()})
}
