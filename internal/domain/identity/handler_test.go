package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sereno/sereno/internal/platform/auth"
)

func postJSON(path, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

// putJSON builds an authenticated PUT request carrying userID as the verified
// token subject.
func putJSON(body string, userID int64) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, userID))
	return req, httptest.NewRecorder()
}

func TestHandlerRegister(t *testing.T) {
	h := NewHandler(newTestService(newMockRepo()))

	e := echo.New()
	req, rec := postJSON("/auth/register",
		`{"fullName":"Asha Rao","gender":"female","mobile":"9876543210","password":"s3cret"}`)
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}

	var session Session
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if session.Token == "" || session.User.FullName != "Asha Rao" {
		t.Errorf("session = %+v", session)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response leaks password field")
	}
}

func TestHandlerRegisterMissingFields(t *testing.T) {
	h := NewHandler(newTestService(newMockRepo()))

	e := echo.New()
	req, rec := postJSON("/auth/register", `{"mobile":"9876543210"}`)
	c := e.NewContext(req, rec)

	err := h.Register(c)
	assertCode(t, err, "VALIDATION_ERROR")
}

func TestHandlerLogin(t *testing.T) {
	svc := newTestService(newMockRepo())
	h := NewHandler(svc)

	e := echo.New()
	req, rec := postJSON("/auth/register",
		`{"fullName":"Asha Rao","mobile":"9876543210","password":"s3cret"}`)
	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	req, rec = postJSON("/auth/login", `{"mobile":"9876543210","password":"s3cret"}`)
	c := e.NewContext(req, rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	req, rec = postJSON("/auth/login", `{"mobile":"9876543210","password":"wrong"}`)
	err := h.Login(e.NewContext(req, rec))
	assertCode(t, err, "INVALID_CREDENTIALS")
}

func TestHandlerLogout(t *testing.T) {
	h := NewHandler(newTestService(newMockRepo()))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()

	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestHandlerUpdateProfile(t *testing.T) {
	svc := newTestService(newMockRepo())
	h := NewHandler(svc)
	e := echo.New()

	req, rec := postJSON("/auth/register",
		`{"fullName":"Asha Rao","mobile":"9876543210","password":"s3cret"}`)
	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	req, rec = putJSON(`{"fullName":"Asha R."}`, 1)
	c := e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues("1")

	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	var user User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if user.FullName != "Asha R." || user.Mobile != "9876543210" {
		t.Errorf("user = %+v", user)
	}
}

func TestHandlerUpdateProfileBadID(t *testing.T) {
	h := NewHandler(newTestService(newMockRepo()))
	e := echo.New()

	for _, id := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("userId")
		c.SetParamValues(id)

		err := h.UpdateProfile(c)
		assertCode(t, err, "VALIDATION_ERROR")
	}
}

func TestHandlerSetPhoto(t *testing.T) {
	svc := newTestService(newMockRepo())
	h := NewHandler(svc)
	e := echo.New()

	req, rec := postJSON("/auth/register",
		`{"fullName":"Asha Rao","mobile":"9876543210","password":"s3cret"}`)
	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	req, rec = putJSON(`{"photoUrl":"https://cdn.example.com/p/1.jpg"}`, 1)
	c := e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues("1")

	if err := h.SetPhoto(c); err != nil {
		t.Fatalf("SetPhoto: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "photoUrl") {
		t.Errorf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerRejectsOtherUsersProfile(t *testing.T) {
	svc := newTestService(newMockRepo())
	h := NewHandler(svc)
	e := echo.New()

	req, rec := postJSON("/auth/register",
		`{"fullName":"Asha Rao","mobile":"9876543210","password":"s3cret"}`)
	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Token subject is user 2; both endpoints target user 1.
	t.Run("update", func(t *testing.T) {
		req, rec := putJSON(`{"fullName":"Mallory"}`, 2)
		c := e.NewContext(req, rec)
		c.SetParamNames("userId")
		c.SetParamValues("1")

		err := h.UpdateProfile(c)
		assertCode(t, err, "FORBIDDEN")
	})

	t.Run("photo", func(t *testing.T) {
		req, rec := putJSON(`{"photoUrl":"https://cdn.example.com/p/x.jpg"}`, 2)
		c := e.NewContext(req, rec)
		c.SetParamNames("userId")
		c.SetParamValues("1")

		err := h.SetPhoto(c)
		assertCode(t, err, "FORBIDDEN")
	})
}
