package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"binsight/internal/config"
	"binsight/internal/db"
	"binsight/internal/domain"
	"binsight/internal/engine"
	"binsight/internal/migrate"
)

const testJWTSecret = "test-secret"

type stubClassifier struct {
	category domain.AnalyzedCategory
	gotBytes int
}

func (s *stubClassifier) Classify(_ context.Context, jpeg []byte) (domain.AnalyzedCategory, error) {
	s.gotBytes = len(jpeg)
	return s.category, nil
}

type testServer struct {
	URL    string
	Engine engine.Engine
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }

func newTestServer(t *testing.T, cls ImageClassifier) *testServer {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, config.Default("station-test"))
	e.Now = func() time.Time { return time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC) }
	handler, err := New(Config{
		Engine:     e,
		Classifier: cls,
		BasePath:   "/v1",
		Auth:       AuthConfig{JWTSecret: testJWTSecret},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	ts := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Engine: e,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	t.Cleanup(ts.close)
	return ts
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func login(t *testing.T, srv *testServer) map[string]string {
	t.Helper()
	if _, err := srv.Engine.CreateAdmin(context.Background(), "admin", "admin@example.org", "un-bon-secret"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/auth/login", map[string]string{
		"username": "admin",
		"password": "un-bon-secret",
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d body %s", res.StatusCode, data)
	}
	var body LoginResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if body.Token == "" {
		t.Fatalf("empty token")
	}
	return map[string]string{"Authorization": "Bearer " + body.Token}
}

func TestLoginAndAuthRequired(t *testing.T) {
	srv := newTestServer(t, nil)

	res, _ := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/statistics", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.StatusCode)
	}

	auth := login(t, srv)
	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/statistics", nil, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", res.StatusCode)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/auth/login", map[string]string{
		"username": "admin",
		"password": "mauvais",
	}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", res.StatusCode)
	}
}

func TestRecordDisposalOpenForStation(t *testing.T) {
	srv := newTestServer(t, nil)

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/disposals", map[string]string{
		"analyzed_category": "compost",
		"bin_category":      "compost",
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("record: status %d body %s", res.StatusCode, data)
	}
	var view DisposalResponse
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.WasteItemID == "" || view.DisposedAt == "" {
		t.Fatalf("incomplete view %+v", view)
	}

	auth := login(t, srv)
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/disposals/"+view.WasteItemID, nil, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get: status %d body %s", res.StatusCode, data)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/disposals", map[string]string{
		"analyzed_category": "verre",
		"bin_category":      "compost",
	}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad category, got %d body %s", res.StatusCode, data)
	}
}

func TestDisposalViewsBulk(t *testing.T) {
	srv := newTestServer(t, nil)
	auth := login(t, srv)

	_, recData := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/disposals", map[string]string{
		"analyzed_category": "recyclage",
		"bin_category":      "recyclage",
	}, nil)
	var recorded DisposalResponse
	if err := json.Unmarshal(recData, &recorded); err != nil {
		t.Fatalf("decode recorded: %v", err)
	}

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/disposals/views", map[string]any{
		"ids": []string{recorded.WasteItemID, "missing"},
	}, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("views: status %d body %s", res.StatusCode, data)
	}
	var views []*DisposalResponse
	if err := json.Unmarshal(data, &views); err != nil {
		t.Fatalf("decode views: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(views))
	}
	if views[0] == nil || views[0].WasteItemID != recorded.WasteItemID {
		t.Fatalf("unexpected first entry %+v", views[0])
	}
	if views[1] != nil {
		t.Fatalf("expected null second entry, got %+v", views[1])
	}
}

func TestNotificationFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	auth := login(t, srv)

	admins, err := srv.Engine.ListAdmins(context.Background())
	if err != nil || len(admins) == 0 {
		t.Fatalf("list admins: %v", err)
	}

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/notifications", map[string]string{
		"bin_category": "compost",
		"admin_id":     admins[0].ID,
	}, auth)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create notification: status %d body %s", res.StatusCode, data)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPut, srv.URL+"/v1/notifications/compost/fill", map[string]bool{
		"is_full": true,
	}, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("set full: status %d body %s", res.StatusCode, data)
	}
	var n NotificationResponse
	if err := json.Unmarshal(data, &n); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !n.IsFull || !n.NotifSent {
		t.Fatalf("expected full and sent, got %+v", n)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/notifications/poubelle", nil, auth)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for untracked bin, got %d", res.StatusCode)
	}
}

func TestClassifyImageEndpoint(t *testing.T) {
	cls := &stubClassifier{category: domain.AnalyzedRecyclage}
	srv := newTestServer(t, cls)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="item.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/images/classify", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("classify: status %d body %s", res.StatusCode, data)
	}
	var body ClassifyResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Category != "recyclage" {
		t.Fatalf("expected recyclage, got %q", body.Category)
	}
	if cls.gotBytes != len(payload) {
		t.Fatalf("classifier got %d bytes, want %d", cls.gotBytes, len(payload))
	}
}

func TestClassifyWithoutClassifier(t *testing.T) {
	srv := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="item.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, _ := mw.CreatePart(header)
	part.Write([]byte{0xFF, 0xD8})
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/images/classify", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without classifier, got %d", res.StatusCode)
	}
}
