// Package security assembles the console's request pipeline from
// configuration: public chains for the configured public paths followed by
// the protected catch-all chain.
package security

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rhuss/adminguard/pkg/access"
	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/auth/credential"
	"github.com/rhuss/adminguard/pkg/auth/rememberme"
	"github.com/rhuss/adminguard/pkg/config"
	"github.com/rhuss/adminguard/pkg/directory"
	"github.com/rhuss/adminguard/pkg/pipeline"
	"github.com/rhuss/adminguard/pkg/pipeline/stage"
	"github.com/rhuss/adminguard/pkg/session"
)

// ProtectedChain is the name of the catch-all chain.
const ProtectedChain = "protected"

// Options carries the configuration sections the pipeline is built from.
type Options struct {
	Security   config.SecurityConfig
	RememberMe config.RememberMeConfig
	Session    config.SessionConfig

	// Directory is the loaded user directory. Required.
	Directory *directory.Directory

	// Matcher compares presented and stored secrets. Default: auth.DelegatingMatcher.
	Matcher auth.SecretMatcher
}

// FromConfig selects the pipeline sections of cfg.
func FromConfig(cfg *config.Config, dir *directory.Directory) Options {
	return Options{
		Security:   cfg.Security,
		RememberMe: cfg.RememberMe,
		Session:    cfg.Session,
		Directory:  dir,
	}
}

// Security is an assembled pipeline and the collaborators it shares.
type Security struct {
	selector *pipeline.Selector
	sessions *session.Store
	tokens   *rememberme.Service
	manager  *auth.Manager
}

// New builds the pipeline.
func New(opts Options) (*Security, error) {
	if opts.Directory == nil {
		return nil, fmt.Errorf("security: directory is required")
	}

	tokens, err := rememberme.NewService(rememberme.Config{
		Key:      []byte(opts.RememberMe.Key),
		Validity: opts.RememberMe.Validity,
	})
	if err != nil {
		return nil, fmt.Errorf("security: remember-me: %w", err)
	}

	sessions := session.New(session.Config{
		IdleTimeout: opts.Session.IdleTimeout,
		MaxSessions: opts.Session.MaxSessions,
	})

	manager := auth.NewManager(
		credential.New(opts.Directory, opts.Matcher),
		rememberme.NewProvider(tokens, opts.Directory),
	)

	sec := &Security{sessions: sessions, tokens: tokens, manager: manager}

	public := make([]pipeline.Chain, 0, len(opts.Security.PublicPaths))
	for _, pattern := range opts.Security.PublicPaths {
		m, err := pipeline.NewAntMatcher(pattern)
		if err != nil {
			return nil, fmt.Errorf("security: public path: %w", err)
		}
		public = append(public, pipeline.Chain{Name: "public " + pattern, Matcher: m})
	}

	protected := pipeline.Chain{
		Name:    ProtectedChain,
		Matcher: pipeline.AnyMatcher{},
		Stages:  sec.protectedStages(opts),
	}
	sec.selector = pipeline.NewSelector(protected, public...)

	slog.Info("security pipeline ready",
		"public_chains", len(public),
		"users", opts.Directory.Len(),
		"required_authority", opts.Security.RequiredAuthority,
	)
	return sec, nil
}

// protectedStages returns the protected chain in execution order. The
// exception boundary sits after context-load so that it handles every
// failure of the stages that follow it.
func (s *Security) protectedStages(opts Options) []pipeline.Stage {
	sc := opts.Security
	binding := stage.SessionBinding{
		Sessions: s.sessions,
		Cookie:   stage.Cookie{Name: opts.Session.CookieName, Secure: opts.RememberMe.SecureCookie},
	}
	rememberCookie := stage.Cookie{Name: opts.RememberMe.CookieName, Secure: opts.RememberMe.SecureCookie}

	var limiter auth.LoginLimiter
	if sc.MaxFailedLoginsPerMinute > 0 {
		limiter = auth.NewInProcessLimiter(sc.MaxFailedLoginsPerMinute)
	}

	return []pipeline.Stage{
		&stage.ContextLoad{Binding: binding},
		&stage.ExceptionTranslator{
			LoginPath:        sc.LoginPath,
			RedirectParam:    sc.RedirectParam,
			AccessDeniedPath: sc.AccessDeniedPath,
		},
		&stage.Logout{
			Path:             sc.LogoutPath,
			SuccessPath:      sc.LogoutSuccessPath,
			Binding:          binding,
			RememberMeCookie: rememberCookie,
		},
		&stage.FormLogin{
			ProcessingPath:   sc.LoginProcessingPath,
			FailurePath:      sc.LoginFailurePath(),
			DefaultTarget:    "/",
			UsernameParam:    sc.UsernameParam,
			PasswordParam:    sc.PasswordParam,
			RememberMeParam:  sc.RememberMeParam,
			RedirectParam:    sc.RedirectParam,
			Manager:          s.manager,
			Limiter:          limiter,
			Binding:          binding,
			Tokens:           s.tokens,
			RememberMeCookie: rememberCookie,
		},
		&stage.RememberMe{
			Manager: s.manager,
			Cookie:  rememberCookie,
			Binding: binding,
		},
		&stage.AccessEnforcement{
			Decisions: access.NewDecisionManager(access.RoleVoter{Prefix: sc.RolePrefix}),
			Required:  sc.RequiredAuthority,
		},
	}
}

// Handler wraps next with the pipeline.
func (s *Security) Handler(next http.Handler) http.Handler {
	return pipeline.NewHandler(s.selector, next)
}

// Middleware returns the pipeline as router middleware.
func (s *Security) Middleware() func(http.Handler) http.Handler {
	return pipeline.Middleware(s.selector)
}

// Selector returns the chain selector.
func (s *Security) Selector() *pipeline.Selector { return s.selector }

// Sessions returns the session store.
func (s *Security) Sessions() *session.Store { return s.sessions }

// Tokens returns the remember-me token service.
func (s *Security) Tokens() *rememberme.Service { return s.tokens }
