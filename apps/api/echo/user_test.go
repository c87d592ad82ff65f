package echoapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tujenge/shindano/core/user"
)

func createTestUser(t *testing.T, repo user.Repository, uname string, roles []string, pwd string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:      uname,
		Username:  uname,
		Email:     uname + "@shindano.cd",
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("createTestUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createTestUser() failed: %v", err)
	}
	return usr
}

func TestUserLogin(t *testing.T) {
	app, usrRepo, _ := setup(t)
	createTestUser(t, usrRepo, "awino", []string{user.RoleStudent}, "LeopardsOfKin13")

	tests := []httpTest{
		{
			name:     "valid credentials",
			body:     marchallObj(t, LoginRequest{Username: "awino", Password: "LeopardsOfKin13"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Username: "awino", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown user",
			body:     marchallObj(t, LoginRequest{Username: "ghost", Password: "LeopardsOfKin13"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK {
				// a signed token comes back; its exact value is not predictable
				if rec.Body.Len() == 0 {
					t.Error("failed! empty response body")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestUserQueryRequiresAdmin(t *testing.T) {
	app, usrRepo, _ := setup(t)
	student := createTestUser(t, usrRepo, "makeda", []string{user.RoleStudent}, "LeopardsOfKin13")

	// no token
	req, rec := newRequest(http.MethodGet, "/v1/users")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, errMissingToken),
	}, rec)

	// non-admin token
	req, rec = newAuthRequest(http.MethodGet, "/v1/users", getToken(t, student))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
	}
}
