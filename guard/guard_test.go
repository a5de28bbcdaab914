package guard

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	authcore "github.com/ratepanel/authcore"
	"github.com/ratepanel/authcore/authapi"
	"github.com/ratepanel/authcore/storage"
)

type stubAPI struct {
	user        *authapi.User
	logoutCalls int
}

func (s *stubAPI) Login(_ context.Context, _ authcore.Credentials) (*authapi.LoginResponse, error) {
	return &authapi.LoginResponse{Access: "acc", Refresh: "ref", User: *s.user}, nil
}

func (s *stubAPI) Logout(_ context.Context, _ string) error {
	s.logoutCalls++
	return nil
}

func (s *stubAPI) Register(_ context.Context, _ authcore.Registration) error { return nil }

func (s *stubAPI) CurrentUser(_ context.Context) (*authapi.User, error) {
	if s.user == nil {
		return nil, &authapi.APIError{Status: 401}
	}
	u := *s.user
	return &u, nil
}

func (s *stubAPI) RefreshToken(_ context.Context, _ string) (string, error) {
	return "", &authapi.APIError{Status: 401}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newGuard builds a guard over a session. A nil user leaves the session
// anonymous; otherwise the session is logged in as that user.
func newGuard(t *testing.T, user *authapi.User) (*Guard, *authcore.Session, *stubAPI) {
	t.Helper()
	api := &stubAPI{user: user}
	session, err := authcore.New().
		WithBaseURL("http://api.test").
		WithStorage(storage.NewMemory()).
		WithAuthAPI(api).
		WithLogger(quietLogger()).
		Build()
	if err != nil {
		t.Fatalf("build session: %v", err)
	}
	if user != nil {
		if res := session.Login(context.Background(), authcore.Credentials{}); !res.Success {
			t.Fatalf("login: %+v", res)
		}
	}
	return New(session, quietLogger()), session, api
}

func admin() *authapi.User {
	return &authapi.User{ID: 1, Username: "root", Role: authcore.RoleAdmin}
}

func worker() *authapi.User {
	return &authapi.User{ID: 2, Username: "crew", Role: authcore.RoleCityWorker}
}

func superuser() *authapi.User {
	return &authapi.User{ID: 3, Username: "su", Role: authcore.RoleCityWorker, IsSuperuser: true}
}

func assertRedirect(t *testing.T, d Decision, target string) {
	t.Helper()
	if d.Action != ActionRedirect || d.Target != target {
		t.Fatalf("expected redirect to %s, got %+v", target, d)
	}
}

func assertAllow(t *testing.T, d Decision) {
	t.Helper()
	if d.Action != ActionAllow {
		t.Fatalf("expected allow, got %+v", d)
	}
}

func TestLoginPathsAllowAnonymous(t *testing.T) {
	g, _, _ := newGuard(t, nil)
	for _, path := range []string{LoginPath, AdminLoginPath, WorkerLoginPath} {
		assertAllow(t, g.Evaluate(context.Background(), Route{Path: path}))
	}
}

func TestLoginPathsBounceAuthenticated(t *testing.T) {
	cases := []struct {
		name string
		user *authapi.User
		want string
	}{
		{"admin", admin(), AdminDashboardPath},
		{"worker", worker(), WorkerDashboardPath},
		{"superuser", superuser(), AdminDashboardPath},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, _, _ := newGuard(t, tc.user)
			d := g.Evaluate(context.Background(), Route{Path: LoginPath})
			assertRedirect(t, d, tc.want)
		})
	}
}

func TestRootResolution(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		g, _, _ := newGuard(t, nil)
		assertRedirect(t, g.Evaluate(context.Background(), Route{Path: "/"}), LoginPath)
	})
	t.Run("admin", func(t *testing.T) {
		g, _, _ := newGuard(t, admin())
		assertRedirect(t, g.Evaluate(context.Background(), Route{Path: "/"}), AdminDashboardPath)
	})
	t.Run("worker by name", func(t *testing.T) {
		g, _, _ := newGuard(t, worker())
		assertRedirect(t, g.Evaluate(context.Background(), Route{Name: "Root", Path: "/start"}), WorkerDashboardPath)
	})
}

func TestPrivilegedAreaAnonymous(t *testing.T) {
	g, _, _ := newGuard(t, nil)
	assertRedirect(t, g.Evaluate(context.Background(), Route{Path: "/admin/dashboard"}), AdminLoginPath)
	assertRedirect(t, g.Evaluate(context.Background(), Route{Path: "/worker/tasks"}), WorkerLoginPath)
}

func TestPrivilegedAreaRoleMismatchForcesLogout(t *testing.T) {
	g, session, api := newGuard(t, worker())

	d := g.Evaluate(context.Background(), Route{Path: "/admin/dashboard"})

	assertRedirect(t, d, AdminLoginPath)
	if session.Authenticated() {
		t.Fatal("expected forced logout on role mismatch")
	}
	if api.logoutCalls != 1 {
		t.Fatalf("expected server-side logout, got %d calls", api.logoutCalls)
	}
}

func TestSuperuserPassesAdminArea(t *testing.T) {
	g, session, _ := newGuard(t, superuser())

	d := g.Evaluate(context.Background(), Route{Path: "/admin/dashboard"})

	assertAllow(t, d)
	if !session.Authenticated() {
		t.Fatal("superuser must stay logged in")
	}
}

func TestBareAreaPathRedirectsToDashboard(t *testing.T) {
	t.Run("admin", func(t *testing.T) {
		g, _, _ := newGuard(t, admin())
		assertRedirect(t, g.Evaluate(context.Background(), Route{Path: "/admin"}), AdminDashboardPath)
	})
	t.Run("worker", func(t *testing.T) {
		g, _, _ := newGuard(t, worker())
		assertRedirect(t, g.Evaluate(context.Background(), Route{Path: "/worker"}), WorkerDashboardPath)
	})
}

func TestRequiresAuthRedirectsToAreaLogin(t *testing.T) {
	g, _, _ := newGuard(t, nil)
	d := g.Evaluate(context.Background(), Route{Path: "/rates", RequiresAuth: true})
	assertRedirect(t, d, LoginPath)
}

func TestRequiredRoleMismatchSoftRedirects(t *testing.T) {
	g, session, api := newGuard(t, worker())

	d := g.Evaluate(context.Background(), Route{Path: "/reports", RequiredRole: authcore.RoleAdmin})

	assertRedirect(t, d, HomePath)
	if !session.Authenticated() {
		t.Fatal("role mismatch outside privileged areas must not log out")
	}
	if api.logoutCalls != 0 {
		t.Fatal("unexpected server-side logout")
	}
}

func TestRequiredRoleMatchAllows(t *testing.T) {
	g, _, _ := newGuard(t, admin())
	assertAllow(t, g.Evaluate(context.Background(), Route{Path: "/reports", RequiredRole: authcore.RoleAdmin}))
}

func TestUnguardedRouteAllows(t *testing.T) {
	g, _, _ := newGuard(t, nil)
	assertAllow(t, g.Evaluate(context.Background(), Route{Path: "/about"}))
}

func TestEvaluateInitializesSession(t *testing.T) {
	g, session, _ := newGuard(t, nil)
	if session.Initialized() {
		t.Fatal("session should start uninitialized")
	}
	g.Evaluate(context.Background(), Route{Path: "/about"})
	if !session.Initialized() {
		t.Fatal("expected evaluate to initialize the session")
	}
}

func TestHandleError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		g, _, _ := newGuard(t, nil)
		assertAllow(t, g.HandleError(context.Background(), nil))
	})
	t.Run("infinite redirect suppressed", func(t *testing.T) {
		g, session, _ := newGuard(t, admin())
		d := g.HandleError(context.Background(), errors.New("Infinite redirect in navigation guard"))
		assertAllow(t, d)
		if !session.Authenticated() {
			t.Fatal("suppressed error must not log out")
		}
	})
	t.Run("auth error forces logout", func(t *testing.T) {
		g, session, _ := newGuard(t, admin())
		d := g.HandleError(context.Background(), errors.New("request failed with status 401"))
		assertRedirect(t, d, LoginPath)
		if session.Authenticated() {
			t.Fatal("expected logout on auth error")
		}
	})
	t.Run("other errors ignored", func(t *testing.T) {
		g, session, _ := newGuard(t, admin())
		d := g.HandleError(context.Background(), errors.New("component render failed"))
		assertAllow(t, d)
		if !session.Authenticated() {
			t.Fatal("unrelated error must not log out")
		}
	})
}
