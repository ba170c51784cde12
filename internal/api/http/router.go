package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/service"
	"github.com/aussiebroadwan/storefront/internal/api/store"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"

	_ "github.com/aussiebroadwan/storefront/api/storefront" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService *service.TokenService
	AuthService  *service.AuthService
	MFAService   *service.MFAService
	UserService  *service.UserService
	AuditService *service.AuditService
}

func NewRouter(keys *jwtx.KeySet, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerUsers()
	r.registerAudit()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpx.Chain(httpSwagger.Handler(),
		httpx.RateLimitByIP(httpx.PublicLimit),
	))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Storefront API
//	@version		0.1.0
//	@description	Accounts, sessions, multi-factor authentication and audit trail of the storefront admin.
//	@description
//	@description				Every response is an envelope: {"data": ...} on success, {"error": {"message", "status"}} otherwise.
//	@description				Tokens are EdDSA signed JWTs whose "type" claim is "user", "mfa" or "password".
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/storefront
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// session requires a "user" token; limit is applied per user.
func (r *Router) session(h http.HandlerFunc, limit httpx.RateLimitConfig, mws ...httpx.Middleware) http.Handler {
	chain := append([]httpx.Middleware{
		httpx.AuthnMiddleware(sessionAuthenticator(r.TokenService)),
		httpx.RateLimitByUser(limit),
	}, mws...)
	return httpx.Chain(h, chain...)
}

// admin is a session route restricted to the admin role.
func (r *Router) admin(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return r.session(h, limit, httpx.RequireAnyRole(domain.RoleAdmin))
}

// temporary requires an "mfa" or "password" token.
func (r *Router) temporary(h http.HandlerFunc, tokenType string) http.Handler {
	return httpx.Chain(h,
		httpx.RateLimitByIP(httpx.StrictLimit),
		httpx.AuthnMiddleware(temporaryAuthenticator(r.TokenService, tokenType)),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Auth: r.AuthService, MFA: r.MFAService}

	// Credential endpoints are limited per IP and per attempted email.
	r.Mux.Handle("POST /1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /1/auth/request-password",
		httpx.Chain(http.HandlerFunc(h.HandleRequestPassword),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("POST /1/auth/set-password", r.temporary(h.HandleSetPassword, jwtx.TypePassword))
	r.Mux.Handle("POST /1/auth/mfa/verify", r.temporary(h.HandleMFAVerify, jwtx.TypeMFA))
	r.Mux.Handle("POST /1/auth/mfa/send-token", r.temporary(h.HandleMFASendToken, jwtx.TypeMFA))

	r.Mux.Handle("POST /1/auth/logout", r.session(h.HandleLogout, httpx.ModerateLimit))
	r.Mux.Handle("POST /1/auth/confirm-access", r.session(h.HandleConfirmAccess, httpx.StrictLimit))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFA: r.MFAService}

	r.Mux.Handle("POST /1/mfa/config", r.session(h.HandleConfig, httpx.ModerateLimit))
	r.Mux.Handle("POST /1/mfa/send-code", r.session(h.HandleSendCode, httpx.StrictLimit))
	r.Mux.Handle("POST /1/mfa/check-code", r.session(h.HandleCheckCode, httpx.StrictLimit))
	r.Mux.Handle("POST /1/mfa/generate-backup-codes", r.session(h.HandleGenerateBackupCodes, httpx.ModerateLimit))
	r.Mux.Handle("POST /1/mfa/enable", r.session(h.HandleEnable, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /1/mfa/disable", r.session(h.HandleDisable, httpx.ModerateLimit))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Users: r.UserService}

	r.Mux.Handle("GET /1/users/me", r.session(h.HandleMe, httpx.LenientLimit))
	r.Mux.Handle("PATCH /1/users/me", r.session(h.HandleUpdateMe, httpx.ModerateLimit))

	r.Mux.Handle("GET /1/users", r.admin(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /1/users", r.admin(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /1/users/{userId}", r.admin(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PATCH /1/users/{userId}", r.admin(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /1/users/{userId}", r.admin(h.HandleDelete, httpx.ModerateLimit))
}

func (r *Router) registerAudit() {
	h := &AuditHandler{Audit: r.AuditService}
	r.Mux.Handle("GET /1/audit-entries", r.admin(h.HandleList, httpx.LenientLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
