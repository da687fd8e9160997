package rsvp_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-backend/internal/rsvp"
	"github.com/sharath018/invitation-backend/middleware"
)

func router(f *fixture, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := rsvp.NewHandler(f.svc)
	r.POST("/public/invitations/:id/rsvps", h.SubmitRSVP)

	owner := r.Group("/", func(c *gin.Context) {
		c.Set("access_context", middleware.AccessContext{UserID: userID})
	})
	owner.GET("/invitations/:id/guests", h.GetGuestList)
	owner.GET("/invitations/:id/guests/export", h.ExportGuestList)
	return r
}

func TestSubmitRSVPHandler(t *testing.T) {
	f := setup(t)
	r := router(f, f.owner)
	path := "/public/invitations/" + f.inv.ID.String() + "/rsvps"

	form := url.Values{"guest_name": {"Jane Doe"}, "is_attending": {"yes"}, "guest_count": {"3"}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("form status = %d, body %s", w.Code, w.Body)
	}

	// JSON numbers are accepted for guest_count
	req = httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"guest_name":"Bob","is_attending":"no","guest_count":1}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("json status = %d, body %s", w.Code, w.Body)
	}

	req = httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"guest_name":"J","is_attending":"yes","guest_count":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status = %d, body %s", w.Code, w.Body)
	}
	var out rsvp.Outcome
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := out.Errors["guest_name"]; !ok || out.Values.GuestName != "J" {
		t.Errorf("outcome = %+v, want guest_name error with values echoed", out)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/"+f.inv.ID.String()+"/guests", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("guests status = %d", w.Code)
	}
	var list rsvp.GuestList
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode guests: %v", err)
	}
	if list.Summary.TotalResponses != 2 || list.Summary.AttendingGuests != 3 || list.Summary.NotAttending != 1 {
		t.Errorf("summary = %+v", list.Summary)
	}
}

func TestSubmitRSVPUnknownInvitation(t *testing.T) {
	f := setup(t)
	r := router(f, f.owner)

	for _, id := range []string{"not-a-uuid", "6f1c2e0a-9a53-4a8e-8a52-6f0a8c3e2b11"} {
		req := httptest.NewRequest(http.MethodPost, "/public/invitations/"+id+"/rsvps", bytes.NewBufferString(`{"guest_name":"Jane","is_attending":"yes","guest_count":1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", id, w.Code)
		}
	}
}

func TestGuestListHandlerHidesOtherOwners(t *testing.T) {
	f := setup(t)
	r := router(f, f.owner+1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/"+f.inv.ID.String()+"/guests", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestExportGuestListHandler(t *testing.T) {
	f := setup(t)
	r := router(f, f.owner)
	base := "/invitations/" + f.inv.ID.String() + "/guests/export"

	tests := []struct {
		query    string
		wantCode int
		wantType string
	}{
		{"", http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"?format=pdf", http.StatusOK, "application/pdf"},
		{"?format=csv", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, base+tt.query, nil))
		if w.Code != tt.wantCode {
			t.Errorf("%q: status = %d, want %d", tt.query, w.Code, tt.wantCode)
			continue
		}
		if tt.wantType == "" {
			continue
		}
		if got := w.Header().Get("Content-Type"); got != tt.wantType {
			t.Errorf("%q: Content-Type = %q, want %q", tt.query, got, tt.wantType)
		}
		if !strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;") {
			t.Errorf("%q: Content-Disposition = %q", tt.query, w.Header().Get("Content-Disposition"))
		}
	}
}
