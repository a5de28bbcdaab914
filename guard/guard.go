package guard

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	authcore "github.com/ratepanel/authcore"
)

// Console paths the guard decides between.
const (
	LoginPath           = "/login"
	AdminLoginPath      = "/admin/login"
	WorkerLoginPath     = "/worker/login"
	AdminDashboardPath  = "/admin/dashboard"
	WorkerDashboardPath = "/worker/dashboard"
	HomePath            = "/home"

	adminPrefix  = "/admin"
	workerPrefix = "/worker"
)

// Action discriminates a [Decision].
type Action uint8

const (
	// ActionAllow lets the navigation proceed.
	ActionAllow Action = iota
	// ActionRedirect replaces the navigation with Target.
	ActionRedirect
)

// Decision is the guard's verdict on a route transition.
type Decision struct {
	Action Action
	Target string
}

// Allow returns the pass-through decision.
func Allow() Decision {
	return Decision{Action: ActionAllow}
}

// Redirect returns a decision replacing the navigation with target.
func Redirect(target string) Decision {
	return Decision{Action: ActionRedirect, Target: target}
}

// redirect records the redirect counter before returning the decision.
func (g *Guard) redirect(target string) Decision {
	g.session.Metrics().Inc(authcore.MetricGuardRedirect)
	return Redirect(target)
}

// Route describes the navigation target: its path, optional route name, and
// the route table's declared requirements.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
	RequiredRole string
}

// Guard enforces the navigation contract against a session.
type Guard struct {
	session *authcore.Session
	log     logrus.FieldLogger
}

// New creates a Guard for the given session. A nil logger falls back to the
// logrus standard logger.
func New(session *authcore.Session, logger logrus.FieldLogger) *Guard {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Guard{session: session, log: logger}
}

// Evaluate decides a route transition. The session is initialized first if
// it has not been, so no rule ever evaluates against stale or empty state.
func (g *Guard) Evaluate(ctx context.Context, to Route) Decision {
	if !g.session.Initialized() {
		if err := g.session.Initialize(ctx); err != nil {
			g.log.WithError(err).Warn("guard: session initialization failed")
		}
	}

	authenticated := g.session.Authenticated()

	// Login entry points: bounce authenticated users to their dashboard,
	// let everyone else through unconditionally.
	if isLoginPath(to.Path) {
		if authenticated {
			return g.redirect(dashboardFor(g.session.CurrentUser()))
		}
		return Allow()
	}

	// Root resolves to the login page or the role-appropriate dashboard.
	if to.Path == "/" || to.Name == "Root" {
		if !authenticated {
			return g.redirect(LoginPath)
		}
		return g.redirect(dashboardFor(g.session.CurrentUser()))
	}

	if strings.HasPrefix(to.Path, adminPrefix) {
		return g.privilegedArea(ctx, to, areaRules{
			login:     AdminLoginPath,
			dashboard: AdminDashboardPath,
			bare:      adminPrefix,
			allowed:   g.session.IsAdmin,
		})
	}

	if strings.HasPrefix(to.Path, workerPrefix) {
		return g.privilegedArea(ctx, to, areaRules{
			login:     WorkerLoginPath,
			dashboard: WorkerDashboardPath,
			bare:      workerPrefix,
			allowed:   g.session.IsWorker,
		})
	}

	if to.RequiresAuth && !authenticated {
		return g.redirect(loginPathFor(to.Path))
	}

	if to.RequiredRole != "" && !g.session.HasRole(to.RequiredRole) {
		if !authenticated {
			return g.redirect(loginPathFor(to.Path))
		}
		// Role mismatch on a non-privileged route is a navigation mistake,
		// not a credential fault: soft redirect, no logout.
		return g.redirect(HomePath)
	}

	return Allow()
}

type areaRules struct {
	login     string
	dashboard string
	bare      string
	allowed   func() bool
}

// privilegedArea enforces rules 4 and 5: authentication, then capability
// with logout on mismatch, then the bare-path dashboard redirect.
func (g *Guard) privilegedArea(ctx context.Context, to Route, area areaRules) Decision {
	if !g.session.Authenticated() {
		return g.redirect(area.login)
	}
	if !area.allowed() {
		g.log.WithFields(logrus.Fields{
			"path": to.Path,
			"user": g.session.DisplayName(),
		}).Warn("guard: privileged area role mismatch, forcing logout")
		g.session.Metrics().Inc(authcore.MetricGuardForcedLogout)
		g.session.Logout(ctx)
		return g.redirect(area.login)
	}
	if to.Path == area.bare {
		return g.redirect(area.dashboard)
	}
	return Allow()
}

// HandleError is the global navigation-error handler. Errors carrying the
// infinite-redirect signature are suppressed; authentication-flavored errors
// force a logout and land on the generic login page. Everything else is
// logged and ignored.
func (g *Guard) HandleError(ctx context.Context, err error) Decision {
	if err == nil {
		return Allow()
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "infinite redirect") {
		g.log.WithError(err).Error("guard: infinite redirect detected, stopping navigation")
		return Allow()
	}
	if strings.Contains(msg, "auth") || strings.Contains(msg, "401") {
		g.session.Logout(ctx)
		return g.redirect(LoginPath)
	}

	g.log.WithError(err).Error("guard: navigation error")
	return Allow()
}

func isLoginPath(path string) bool {
	switch path {
	case LoginPath, AdminLoginPath, WorkerLoginPath:
		return true
	}
	return false
}

// loginPathFor maps a target path to its area's login entry point.
func loginPathFor(path string) string {
	switch {
	case strings.HasPrefix(path, adminPrefix):
		return AdminLoginPath
	case strings.HasPrefix(path, workerPrefix):
		return WorkerLoginPath
	default:
		return LoginPath
	}
}

// dashboardFor maps a profile to its role-appropriate dashboard.
func dashboardFor(u *authcore.User) string {
	switch {
	case u == nil:
		return HomePath
	case u.IsAdmin():
		return AdminDashboardPath
	case u.IsWorker():
		return WorkerDashboardPath
	default:
		return HomePath
	}
}
