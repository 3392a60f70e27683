package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/obs"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/jwtx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"

	_ "github.com/aussiebroadwan/tenantry/api/tenantry" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *obs.Metrics

	store              store.Store
	UserService        *service.UserService
	AccountService     *service.AccountService
	InvitationService  *service.InvitationService
	Validator          *service.InvitationValidator
	MembershipResolver *service.MembershipResolver
	SignupService      *service.SignupService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	metrics *obs.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      metrics,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerInvitations()
	r.registerSignupTokens()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tenantry Account Service API
//	@version		0.1.0
//	@description	Coach and agency accounts, membership, and the invitation lifecycle that grows them.
//	@description
//	@description				Invitation tokens are returned once at issuance and only their fingerprint is stored.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tenantry
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
//	@description				Identity token from the platform IdP. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var h http.Handler = r.Mux
	if r.metrics != nil {
		h = r.metrics.Instrument(h)
	}
	httpx.Chain(h, r.middlewares...).ServeHTTP(w, req)
}

// authenticated verifies the bearer token, mirrors the caller into the user
// directory and applies a per-user rate limit.
func (r *Router) authenticated(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
		r.ensureCaller,
	)
}

// ensureCaller makes sure the authenticated subject exists locally before
// any service looks it up.
func (r *Router) ensureCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		userID, _ := httpx.UserIDFromContext(ctx)
		if _, err := r.UserService.Ensure(ctx, userID, httpx.EmailFromContext(ctx)); err != nil {
			writeError(w, req, err)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{AccountService: r.AccountService}

	// POST /v1/accounts - create an account and its owner membership
	r.Mux.Handle("POST /v1/accounts",
		r.authenticated(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit),
	)

	// GET /v1/accounts - accounts owned by the caller
	r.Mux.Handle("GET /v1/accounts",
		r.authenticated(http.HandlerFunc(h.HandleListOwned), httpx.LenientLimit),
	)

	// GET /v1/accounts/{id} - any member may read
	r.Mux.Handle("GET /v1/accounts/{id}",
		r.authenticated(http.HandlerFunc(h.HandleGet), httpx.LenientLimit),
	)

	// GET /v1/accounts/{id}/members - any member may list
	r.Mux.Handle("GET /v1/accounts/{id}/members",
		r.authenticated(http.HandlerFunc(h.HandleListMembers), httpx.LenientLimit),
	)
}

func (r *Router) registerInvitations() {
	issueHandler := &InvitationIssueHandler{InvitationService: r.InvitationService}
	validateHandler := &InvitationValidateHandler{Validator: r.Validator}
	acceptHandler := &InvitationAcceptHandler{MembershipResolver: r.MembershipResolver}
	markUsedHandler := &InvitationMarkUsedHandler{InvitationService: r.InvitationService}
	pendingHandler := &InvitationPendingHandler{InvitationService: r.InvitationService}

	// POST /v1/accounts/{id}/invitations - issuer authority checked by the service
	r.Mux.Handle("POST /v1/accounts/{id}/invitations",
		r.authenticated(issueHandler, httpx.ModerateLimit),
	)

	// POST /v1/invitations/validate - public, strict limit against token guessing
	r.Mux.Handle("POST /v1/invitations/validate",
		httpx.Chain(validateHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/invitations/accept",
		r.authenticated(acceptHandler, httpx.StrictLimit),
	)
	r.Mux.Handle("POST /v1/invitations/mark-used",
		r.authenticated(markUsedHandler, httpx.ModerateLimit),
	)
	r.Mux.Handle("GET /v1/invitations/pending",
		r.authenticated(pendingHandler, httpx.LenientLimit),
	)
}

func (r *Router) registerSignupTokens() {
	h := &SignupTokensHandler{SignupService: r.SignupService}

	r.Mux.Handle("POST /v1/signup-tokens",
		r.authenticated(http.HandlerFunc(h.HandleIssue), httpx.ModerateLimit),
	)
	r.Mux.Handle("POST /v1/signup-tokens/redeem",
		r.authenticated(http.HandlerFunc(h.HandleRedeem), httpx.StrictLimit),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
