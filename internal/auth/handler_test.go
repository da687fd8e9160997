package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-backend/internal/auth"
)

func TestAuthHandlers(t *testing.T) {
	svc, _ := newService(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := auth.NewHandler(svc)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := post("/auth/register", `{"fullName":"Jane","email":"jane@example.com","password":"secret123"}`); w.Code != http.StatusCreated {
		t.Fatalf("register = %d %s", w.Code, w.Body)
	}
	if w := post("/auth/register", `{"fullName":"Jane","email":"jane@example.com","password":"secret123"}`); w.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", w.Code)
	}
	if w := post("/auth/register", `{"fullName":"Jane","email":"not-an-email","password":"secret123"}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid register = %d, want 400", w.Code)
	}
	if w := post("/auth/login", `{"email":"jane@example.com","password":"nope"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("bad login = %d, want 401", w.Code)
	}

	w := post("/auth/login", `{"email":"jane@example.com","password":"secret123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d %s", w.Code, w.Body)
	}
	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		Redirect     string `json:"redirect"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.AccessToken == "" || resp.Redirect != "/dashboard" {
		t.Errorf("login response = %+v", resp)
	}

	if w := post("/auth/refresh", `{"refreshToken":"`+resp.RefreshToken+`"}`); w.Code != http.StatusOK {
		t.Errorf("refresh = %d", w.Code)
	}
	if w := post("/auth/refresh", `{"refreshToken":"`+resp.AccessToken+`"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh with access token = %d, want 401", w.Code)
	}
}
