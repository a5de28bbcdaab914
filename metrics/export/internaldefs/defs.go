package internaldefs

import (
	authcore "github.com/ratepanel/authcore"
)

// CounterDef maps an internal counter ID to its exported name and help text.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs is the exported counter table shared by all exporters.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login attempts."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricRegisterSuccess, Name: "authcore_register_success_total", Help: "Successful account registrations."},
	{ID: authcore.MetricRegisterFailure, Name: "authcore_register_failure_total", Help: "Failed account registrations."},
	{ID: authcore.MetricValidateSuccess, Name: "authcore_validate_success_total", Help: "Successful access-token validations."},
	{ID: authcore.MetricValidateFailure, Name: "authcore_validate_failure_total", Help: "Failed access-token validations."},
	{ID: authcore.MetricRefreshSuccess, Name: "authcore_refresh_success_total", Help: "Successful session refresh operations."},
	{ID: authcore.MetricRefreshFailure, Name: "authcore_refresh_failure_total", Help: "Failed session refresh operations."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Logout operations."},
	{ID: authcore.MetricSessionCleared, Name: "authcore_session_cleared_total", Help: "Full session resets."},
	{ID: authcore.MetricSessionRestored, Name: "authcore_session_restored_total", Help: "Sessions restored from the persisted mirror."},
	{ID: authcore.MetricGatewayRetry, Name: "authcore_gateway_retry_total", Help: "Requests replayed after a recovered 401."},
	{ID: authcore.MetricGatewayRefreshSuccess, Name: "authcore_gateway_refresh_success_total", Help: "Successful gateway token refreshes."},
	{ID: authcore.MetricGatewayRefreshFailure, Name: "authcore_gateway_refresh_failure_total", Help: "Failed gateway token refreshes."},
	{ID: authcore.MetricGatewayRefreshThrottled, Name: "authcore_gateway_refresh_throttled_total", Help: "Gateway refreshes denied by the rate limit."},
	{ID: authcore.MetricGatewayRestart, Name: "authcore_gateway_restart_total", Help: "Restart hook invocations after unrecoverable refresh failures."},
	{ID: authcore.MetricGuardRedirect, Name: "authcore_guard_redirect_total", Help: "Navigations replaced by a guard redirect."},
	{ID: authcore.MetricGuardForcedLogout, Name: "authcore_guard_forced_logout_total", Help: "Forced logouts on privileged-area role mismatch."},
}
