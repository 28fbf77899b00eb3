package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/company-messenger/internal/database"
	"github.com/AnshRaj112/company-messenger/internal/handlers"
	"github.com/AnshRaj112/company-messenger/internal/models"
	"github.com/AnshRaj112/company-messenger/internal/routes"
	"github.com/AnshRaj112/company-messenger/internal/services"
	"github.com/AnshRaj112/company-messenger/internal/store"
)

// heldScheduler never fires, so message status stays where the test puts it.
type heldScheduler struct{}

type heldTimer struct{}

func (heldTimer) Stop() bool { return true }

func (heldScheduler) AfterFunc(time.Duration, func()) store.Timer { return heldTimer{} }

type fakeUploader struct {
	got    []byte
	folder string
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, folder string) (string, error) {
	f.got, _ = io.ReadAll(file)
	f.folder = folder
	return "https://cdn.example.com/logo.png", nil
}

type testServer struct {
	h      *handlers.Handlers
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithKV(t, database.NewMemoryKV())
}

func newTestServerWithKV(t *testing.T, kv database.KV) *testServer {
	t.Helper()
	hub := services.NewHub()
	st := store.New(kv, store.Options{
		Scheduler: heldScheduler{},
		Presence:  store.PresenceFunc(func(models.User) bool { return false }),
		Notifier:  hub,
	})
	if err := st.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(st.Close)

	h := handlers.New(st, services.NewMemorySessions(), hub, nil)
	r := chi.NewRouter()
	routes.SetupRoutes(r, h)
	return &testServer{h: h, router: r}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) login(t *testing.T, identifier, password string) string {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"identifier": identifier, "password": password})
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", identifier, rr.Code, rr.Body.String())
	}
	var resp handlers.AuthResponse
	decode(t, rr, &resp)
	return resp.Token
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dest); err != nil {
		t.Fatalf("decoding %q: %v", rr.Body.String(), err)
	}
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp handlers.ActionResponse
	decode(t, rr, &resp)
	return resp.Message
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"identifier": "admin", "password": "GravitiAdmin2025!"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var resp handlers.AuthResponse
	decode(t, rr, &resp)
	if resp.Token == "" || resp.User == nil || resp.User.ID != "admin" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if !resp.RequiresPasswordChange {
		t.Error("admin with initial password should be asked to change it")
	}
	if strings.Contains(rr.Body.String(), "GravitiAdmin2025!") {
		t.Error("password leaked in response")
	}

	rr = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"phoneNumber": "+1234567890", "password": "password123"})
	if rr.Code != http.StatusOK {
		t.Errorf("login by phone field: %d", rr.Code)
	}

	rr = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"identifier": "admin", "password": "wrong"})
	if rr.Code != http.StatusUnauthorized || message(t, rr) != "Invalid credentials! Please try again." {
		t.Errorf("bad login: %d %s", rr.Code, rr.Body.String())
	}
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"name": "Ann", "phoneNumber": "+1999", "email": "ann@company.com", "password": "secret1"}

	rr := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rr.Code, rr.Body.String())
	}
	s.login(t, "ann@company.com", "secret1")

	rr = s.do(t, http.MethodPost, "/api/auth/register", "", body)
	if rr.Code != http.StatusConflict || message(t, rr) != "Phone number already registered!" {
		t.Errorf("duplicate phone: %d %s", rr.Code, rr.Body.String())
	}
	body["phoneNumber"] = "+2000"
	rr = s.do(t, http.MethodPost, "/api/auth/register", "", body)
	if rr.Code != http.StatusConflict || message(t, rr) != "Email already registered!" {
		t.Errorf("duplicate email: %d %s", rr.Code, rr.Body.String())
	}
	rr = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "x"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing fields: %d", rr.Code)
	}
}

func TestRequiresSession(t *testing.T) {
	s := newTestServer(t)
	if rr := s.do(t, http.MethodGet, "/api/chats", "", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/api/chats", "forged", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("forged token: %d", rr.Code)
	}
}

func TestMessagingFlow(t *testing.T) {
	s := newTestServer(t)
	john := s.login(t, "john@company.com", "password123")
	mike := s.login(t, "mike@company.com", "password123")

	rr := s.do(t, http.MethodPost, "/api/conversations/user2/messages", john, map[string]string{"content": "  hi @user2  "})
	if rr.Code != http.StatusCreated {
		t.Fatalf("send: %d %s", rr.Code, rr.Body.String())
	}
	var sent handlers.SendMessageResponse
	decode(t, rr, &sent)
	if sent.Msg.Content != "hi @user2" || sent.Msg.Status != models.MessageStatusSent || len(sent.Msg.Mentions) != 1 {
		t.Errorf("sent message = %+v", sent.Msg)
	}

	if rr := s.do(t, http.MethodPost, "/api/conversations/user2/messages", john, map[string]string{"content": "   "}); rr.Code != http.StatusNoContent {
		t.Errorf("blank message: %d", rr.Code)
	}
	if rr := s.do(t, http.MethodPost, "/api/conversations/nobody/messages", john, map[string]string{"content": "hello"}); rr.Code != http.StatusNotFound {
		t.Errorf("unknown receiver: %d", rr.Code)
	}
	if rr := s.do(t, http.MethodPost, "/api/conversations/group2/messages", mike, map[string]string{"content": "let me in"}); rr.Code != http.StatusForbidden {
		t.Errorf("non-member group send: %d", rr.Code)
	}

	rr = s.do(t, http.MethodGet, "/api/conversations/user1/messages", mike, nil)
	var conv handlers.ConversationResponse
	decode(t, rr, &conv)
	if conv.Total != 0 {
		t.Errorf("mike sees %d messages with john", conv.Total)
	}

	rr = s.do(t, http.MethodGet, "/api/conversations/group1/messages", mike, nil)
	decode(t, rr, &conv)
	if conv.Total != 3 || conv.Messages[0].ID != "msg1" {
		t.Errorf("group history = %+v", conv)
	}
	if rr := s.do(t, http.MethodGet, "/api/conversations/group2/messages", mike, nil); rr.Code != http.StatusForbidden {
		t.Errorf("non-member group history: %d", rr.Code)
	}
}

func TestMarkRead(t *testing.T) {
	s := newTestServer(t)
	john := s.login(t, "john@company.com", "password123")

	rr := s.do(t, http.MethodGet, "/api/chats?q=system", john, nil)
	var chats handlers.ListChatsResponse
	decode(t, rr, &chats)
	if chats.Total != 1 || chats.Chats[0].ID != "admin" || chats.Chats[0].UnreadCount != 1 {
		t.Fatalf("chats = %+v", chats)
	}

	rr = s.do(t, http.MethodPost, "/api/conversations/admin/read", john, nil)
	var read handlers.MarkReadResponse
	decode(t, rr, &read)
	if rr.Code != http.StatusOK || read.UnreadCount != 0 {
		t.Errorf("mark read: %d %+v", rr.Code, read)
	}
}

func TestGroups(t *testing.T) {
	s := newTestServer(t)
	john := s.login(t, "john@company.com", "password123")
	mike := s.login(t, "mike@company.com", "password123")

	rr := s.do(t, http.MethodPost, "/api/groups", john, map[string]interface{}{"name": "Launch", "members": []string{"user2"}})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	var created handlers.GroupResponse
	decode(t, rr, &created)
	if created.Message != `Group "Launch" created successfully!` || len(created.Members) != 2 {
		t.Errorf("created = %+v", created)
	}

	if rr := s.do(t, http.MethodGet, "/api/groups/"+created.Group.ID, mike, nil); rr.Code != http.StatusForbidden {
		t.Errorf("non-member view: %d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/api/groups/"+created.Group.ID, john, nil); rr.Code != http.StatusOK {
		t.Errorf("member view: %d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/api/groups/missing", john, nil); rr.Code != http.StatusNotFound {
		t.Errorf("missing group: %d", rr.Code)
	}

	rr = s.do(t, http.MethodPost, "/api/groups", john, map[string]interface{}{"name": "Empty"})
	if rr.Code != http.StatusBadRequest || message(t, rr) != "Please select at least one member" {
		t.Errorf("no members: %d %s", rr.Code, rr.Body.String())
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "GravitiAdmin2025!")
	john := s.login(t, "john@company.com", "password123")

	if rr := s.do(t, http.MethodGet, "/api/admin/users", john, nil); rr.Code != http.StatusForbidden {
		t.Errorf("non-admin: %d", rr.Code)
	}

	rr := s.do(t, http.MethodPost, "/api/admin/users", admin, map[string]string{"name": "Zed", "phoneNumber": "+1555", "email": "zed@company.com", "password": "temp123"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add user: %d %s", rr.Code, rr.Body.String())
	}
	rr = s.do(t, http.MethodPost, "/api/admin/users", admin, map[string]string{"name": "Zed"})
	if rr.Code != http.StatusBadRequest || message(t, rr) != "Please fill in all fields" {
		t.Errorf("incomplete user: %d %s", rr.Code, rr.Body.String())
	}

	rr = s.do(t, http.MethodGet, "/api/admin/users", admin, nil)
	var users handlers.UsersResponse
	decode(t, rr, &users)
	if users.Total != 5 {
		t.Errorf("total users = %d", users.Total)
	}
	if strings.Contains(rr.Body.String(), "password123") {
		t.Error("passwords leaked")
	}

	rr = s.do(t, http.MethodPut, "/api/admin/settings", admin, map[string]interface{}{"allowedIPs": []string{"10.0.0.0/8", ""}})
	var settings handlers.SettingsResponse
	decode(t, rr, &settings)
	if len(settings.Settings.AllowedIPs) != 1 {
		t.Errorf("allowedIPs = %v", settings.Settings.AllowedIPs)
	}

	rr = s.do(t, http.MethodPut, "/api/admin/branding", admin, map[string]string{"companyName": " Acme ", "logoUrl": "https://x/logo.png"})
	decode(t, rr, &settings)
	if settings.Settings.CompanyName != "Acme" {
		t.Errorf("company = %q", settings.Settings.CompanyName)
	}

	rr = s.do(t, http.MethodGet, "/api/settings", "", nil)
	if !strings.Contains(rr.Body.String(), `"companyName":"Acme"`) || strings.Contains(rr.Body.String(), "allowedIPs") {
		t.Errorf("public settings = %s", rr.Body.String())
	}
}

func TestAppDisabled(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "GravitiAdmin2025!")
	john := s.login(t, "john@company.com", "password123")

	rr := s.do(t, http.MethodPost, "/api/admin/toggle-disabled", admin, nil)
	if rr.Code != http.StatusOK || message(t, rr) != "Application disabled successfully!" {
		t.Fatalf("toggle: %d %s", rr.Code, rr.Body.String())
	}

	if rr := s.do(t, http.MethodGet, "/api/chats", john, nil); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("user while disabled: %d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/api/chats", admin, nil); rr.Code != http.StatusOK {
		t.Errorf("admin while disabled: %d", rr.Code)
	}
	if rr := s.do(t, http.MethodPost, "/api/auth/logout", john, nil); rr.Code != http.StatusOK {
		t.Errorf("logout while disabled: %d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/api/auth/me", john, nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("token should be invalid after logout: %d", rr.Code)
	}
}

func TestPasswordRoutes(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"identifier": "nobody"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("reset unknown: %d", rr.Code)
	}
	rr = s.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"identifier": "+1234567891"})
	if rr.Code != http.StatusOK {
		t.Fatalf("reset: %d", rr.Code)
	}
	jane := s.login(t, "jane@company.com", store.DemoResetPassword)

	rr = s.do(t, http.MethodPost, "/api/auth/change-password", jane, map[string]string{
		"currentPassword": store.DemoResetPassword, "newPassword": "abc", "confirmPassword": "abc",
	})
	if rr.Code != http.StatusBadRequest || message(t, rr) != "Password must be at least 6 characters long" {
		t.Errorf("short password: %d %s", rr.Code, rr.Body.String())
	}
	rr = s.do(t, http.MethodPost, "/api/auth/change-password", jane, map[string]string{
		"currentPassword": store.DemoResetPassword, "newPassword": "better-one", "confirmPassword": "better-one",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("change: %d %s", rr.Code, rr.Body.String())
	}
	s.login(t, "jane@company.com", "better-one")
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	john := s.login(t, "john@company.com", "password123")

	rr := s.do(t, http.MethodPut, "/api/profile", john, map[string]string{"name": "Johnny", "email": "jane@company.com"})
	if rr.Code != http.StatusConflict {
		t.Errorf("taken email: %d", rr.Code)
	}
	rr = s.do(t, http.MethodPut, "/api/profile", john, map[string]string{"name": "Johnny", "email": "johnny@company.com"})
	var resp handlers.AuthResponse
	decode(t, rr, &resp)
	if rr.Code != http.StatusOK || resp.User.Name != "Johnny" {
		t.Errorf("update: %d %+v", rr.Code, resp)
	}
}

func logoRequest(t *testing.T, token string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="logo"; filename="logo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/branding/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadLogoInline(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "GravitiAdmin2025!")

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, logoRequest(t, admin, []byte("png-bytes")))
	if rr.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rr.Code, rr.Body.String())
	}
	if got := s.h.Store.Settings().LogoURL; got != "data:image/png;base64,cG5nLWJ5dGVz" {
		t.Errorf("logo = %q", got)
	}
	if got := s.h.Store.Settings().CompanyName; got != store.DefaultCompanyName {
		t.Errorf("company name changed to %q", got)
	}
}

func TestUploadLogoCloudinary(t *testing.T) {
	s := newTestServer(t)
	up := &fakeUploader{}
	s.h.Uploader = up
	admin := s.login(t, "admin", "GravitiAdmin2025!")

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, logoRequest(t, admin, []byte("png-bytes")))
	if rr.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rr.Code, rr.Body.String())
	}
	if string(up.got) != "png-bytes" || up.folder != services.LogoFolder {
		t.Errorf("uploader got %q into %q", up.got, up.folder)
	}
	if got := s.h.Store.Settings().LogoURL; got != "https://cdn.example.com/logo.png" {
		t.Errorf("logo = %q", got)
	}
}
