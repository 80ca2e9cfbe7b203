package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/database"
	"github.com/amoylab/ifood-dashboard/internal/apiserver/middleware"
	"github.com/amoylab/ifood-dashboard/internal/auth/jwt"
	"github.com/amoylab/ifood-dashboard/internal/common/cnst"
	"github.com/amoylab/ifood-dashboard/internal/common/dto"
	"github.com/amoylab/ifood-dashboard/internal/i18n"
)

// Auth handles registration and token issuance
type Auth struct {
	db         database.Database
	jwtService *jwt.Service
	logger     *zap.Logger
}

// NewAuth creates a new authentication handler
func NewAuth(db database.Database, jwtService *jwt.Service, logger *zap.Logger) *Auth {
	return &Auth{
		db:         db,
		jwtService: jwtService,
		logger:     logger.Named("auth"),
	}
}

// Register creates a user with a bcrypt hashed password
func (h *Auth) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrInvalidRequest.WithParam("Reason", "name, email and password are required"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		i18n.RespondWithError(c, i18n.ErrInvalidRequest.WithParam("Reason", "name, email and password are required"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		i18n.RespondWithError(c, i18n.ErrInvalidRequest.WithParam("Reason", "password must be at most 72 bytes"))
		return
	}
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	login := &database.Login{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		IDUnidade:    req.IDUnidade,
		Role:         database.RoleManager,
	}
	err = h.db.Transaction(c.Request.Context(), func(ctx context.Context) error {
		return h.db.CreateLogin(ctx, login)
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			i18n.RespondWithError(c, i18n.ErrEmailExists)
			return
		}
		fail(c, h.logger, err)
		return
	}

	h.logger.Info("user registered", zap.Uint("id", login.ID))
	c.JSON(http.StatusOK, dto.RegisterResponse{ID: login.ID, Email: login.Email, Name: login.Name})
}

// Login exchanges a JSON email and password for a bearer token
func (h *Auth) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrInvalidRequest.WithParam("Reason", "email and password are required"))
		return
	}
	h.issue(c, req.Email, req.Password)
}

// Token is the OAuth2 password grant flavour of Login
func (h *Auth) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrInvalidRequest.WithParam("Reason", "username and password are required"))
		return
	}
	if req.GrantType != "" && req.GrantType != "password" {
		i18n.RespondWithError(c, i18n.ErrInvalidRequest.WithParam("Reason", "unsupported grant_type"))
		return
	}
	h.issue(c, req.Username, req.Password)
}

// Me returns the authenticated user
func (h *Auth) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		i18n.RespondWithError(c, i18n.ErrNotAuthenticated)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserInfo(user))
}

// issue checks the credentials and answers with a token. Unknown email and
// wrong password share one error so accounts cannot be enumerated.
func (h *Auth) issue(c *gin.Context, email, password string) {
	user, err := h.db.GetLoginByEmail(c.Request.Context(), strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			i18n.RespondWithError(c, i18n.ErrInvalidCredentials)
			return
		}
		fail(c, h.logger, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		i18n.RespondWithError(c, i18n.ErrInvalidCredentials)
		return
	}

	token, err := h.jwtService.GenerateToken(user.Email)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: cnst.TokenType})
}
