package authapi

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBoolFlagUnmarshal(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    BoolFlag
		wantErr bool
	}{
		{"true", `true`, true, false},
		{"false", `false`, false, false},
		{"legacy one", `1`, true, false},
		{"zero", `0`, false, false},
		{"other number", `2`, false, false},
		{"null", `null`, false, false},
		{"string", `"yes"`, false, true},
		{"object", `{}`, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var b BoolFlag
			err := json.Unmarshal([]byte(tc.raw), &b)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal %s: %v", tc.raw, err)
			}
			if b != tc.want {
				t.Fatalf("unmarshal %s = %v, want %v", tc.raw, b, tc.want)
			}
		})
	}
}

func TestBoolFlagMarshalNormalizes(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"id":1,"is_superuser":1}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var round map[string]any
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if v, ok := round["is_superuser"].(bool); !ok || !v {
		t.Fatalf("expected normalized boolean true, got %v", round["is_superuser"])
	}
}

func TestDecodeUser(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"id":7,"username":"pat","role":"admin"}`, false},
		{"extra fields ignored", `{"id":7,"username":"pat","last_login":"2026-01-01"}`, false},
		{"legacy superuser", `{"id":7,"is_superuser":1}`, false},
		{"missing id", `{"username":"pat"}`, true},
		{"zero id", `{"id":0,"username":"pat"}`, true},
		{"wrong id type", `{"id":"seven"}`, true},
		{"not json", `<html>`, true},
		{"empty", ``, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := DecodeUser([]byte(tc.raw))
			if tc.wantErr {
				if !errors.Is(err, ErrProfileInvalid) {
					t.Fatalf("expected ErrProfileInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if u.ID != 7 {
				t.Fatalf("expected id 7, got %d", u.ID)
			}
		})
	}
}

func TestUserCapabilities(t *testing.T) {
	cases := []struct {
		name   string
		user   *User
		admin  bool
		worker bool
	}{
		{"admin role", &User{ID: 1, Role: RoleAdmin}, true, false},
		{"superuser override", &User{ID: 1, Role: RoleCityWorker, IsSuperuser: true}, true, true},
		{"plain worker", &User{ID: 1, Role: RoleCityWorker}, false, true},
		{"no role", &User{ID: 1}, false, false},
		{"nil", nil, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.IsAdmin(); got != tc.admin {
				t.Fatalf("IsAdmin() = %v, want %v", got, tc.admin)
			}
			if got := tc.user.IsWorker(); got != tc.worker {
				t.Fatalf("IsWorker() = %v, want %v", got, tc.worker)
			}
		})
	}
}

func TestAPIErrorReason(t *testing.T) {
	cases := []struct {
		name string
		err  APIError
		want string
	}{
		{"message first", APIError{Message: "m", Detail: "d", Err: "e"}, "m"},
		{"detail second", APIError{Detail: "d", Err: "e"}, "d"},
		{"error last", APIError{Err: "e"}, "e"},
		{"empty", APIError{Status: 500}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Reason(); got != tc.want {
				t.Fatalf("Reason() = %q, want %q", got, tc.want)
			}
		})
	}
}
