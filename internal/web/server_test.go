package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"phrasebook/internal/activity"
	"phrasebook/internal/api"
	"phrasebook/internal/auth"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/services"
	"phrasebook/internal/testsupport"
)

type testServer struct {
	*Server
	store *dictionary.Store
	log   *activity.Log
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithUsers("alice:pass1,bob:pass2"))
	store := testsupport.MustOpenStore(t, cfg)
	log := activity.New(cfg.Paths.ActivityLog)
	srv, err := New(cfg, Options{Store: store, Activity: log})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return testServer{Server: srv, store: store, log: log}
}

func (ts testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts testServer) sessionCookie(t *testing.T, user, password string) *http.Cookie {
	t.Helper()
	form := url.Values{"user": {user}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := ts.do(t, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookie {
			return cookie
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func (ts testServer) bearerToken(t *testing.T) string {
	t.Helper()
	body, _ := json.Marshal(api.LoginRequest{User: "alice", Password: "pass1"})
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("api login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp api.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.User != "alice" || resp.Token == "" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
	return resp.Token
}

func apiRequest(method, target, token string, body any) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (ts testServer) actions(t *testing.T) []string {
	t.Helper()
	entries, err := ts.log.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read activity: %v", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Action+"|"+e.User+"|"+e.Details)
	}
	return out
}

func TestNewRequiresUsers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	_, err := New(cfg, Options{Store: store, Activity: activity.New(cfg.Paths.ActivityLog)})
	if !errors.Is(err, auth.ErrNoUsers) || !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing users, got %v", err)
	}
}

func TestPagesRedirectToLoginWithoutSession(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/", "/export.csv", "/activity.csv"} {
		rec := ts.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Fatalf("%s: expected redirect to /login, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestLoginRecordsSuccessAndFailure(t *testing.T) {
	ts := newTestServer(t)

	form := url.Values{"user": {"alice"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := ts.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Login failed") {
		t.Fatalf("expected failure message, got %s", rec.Body.String())
	}

	cookie := ts.sessionCookie(t, "bob", "pass2")
	if !cookie.HttpOnly {
		t.Fatal("session cookie should be HttpOnly")
	}

	page := httptest.NewRequest(http.MethodGet, "/", nil)
	page.AddCookie(cookie)
	rec = ts.do(t, page)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Logged in as bob") {
		t.Fatalf("index status = %d body %s", rec.Code, rec.Body.String())
	}

	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logout.AddCookie(cookie)
	if rec := ts.do(t, logout); rec.Code != http.StatusSeeOther {
		t.Fatalf("logout status = %d", rec.Code)
	}

	want := []string{"login_failed|alice|", "login|bob|success", "logout|bob|"}
	got := ts.actions(t)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("activity = %q, want %q", got, want)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	ts := newTestServer(t)
	for _, token := range []string{"", "garbage"} {
		rec := ts.do(t, apiRequest(http.MethodGet, "/api/phrases", token, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: status = %d", token, rec.Code)
		}
		var resp api.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if resp.Error == "" || resp.RequestID == "" {
			t.Fatalf("expected error and request id, got %+v", resp)
		}
	}
}

func TestAPIPhraseLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bearerToken(t)

	rec := ts.do(t, apiRequest(http.MethodPost, "/api/phrases", token, api.UpsertRequest{Source: "Good morning", Target: "おはよう", Tags: "greeting"}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %s", rec.Code, rec.Body.String())
	}
	var created api.PhraseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if !created.Created || created.Phrase.ID == 0 || len(created.Phrase.Tags) != 1 {
		t.Fatalf("unexpected create response: %+v", created)
	}
	testsupport.MustUpsert(t, ts.store, "Good evening", "こんばんは")

	rec = ts.do(t, apiRequest(http.MethodPost, "/api/phrases", token, api.UpsertRequest{Source: "Good morning"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing target status = %d", rec.Code)
	}

	rec = ts.do(t, apiRequest(http.MethodGet, "/api/search?q="+url.QueryEscape("morning, good!")+"&limit=50", token, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d body %s", rec.Code, rec.Body.String())
	}
	var found api.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &found); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if found.Limit != 10 || len(found.Candidates) == 0 || found.Candidates[0].Phrase.Source != "Good morning" || found.Candidates[0].Score != 100 {
		t.Fatalf("unexpected search response: %+v", found)
	}

	if rec := ts.do(t, apiRequest(http.MethodGet, "/api/search", token, nil)); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty query status = %d", rec.Code)
	}

	id := strconv.FormatInt(created.Phrase.ID, 10)
	rec = ts.do(t, apiRequest(http.MethodPost, "/api/phrases/"+id+"/adopt", token, nil))
	var adopted api.PhraseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &adopted); err != nil {
		t.Fatalf("decode adopt: %v", err)
	}
	if rec.Code != http.StatusOK || adopted.Phrase.UsageCount != 1 {
		t.Fatalf("adopt status = %d phrase %+v", rec.Code, adopted.Phrase)
	}

	rec = ts.do(t, apiRequest(http.MethodGet, "/api/phrases", token, nil))
	var list api.PhraseListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Phrases) != 2 || list.Phrases[0].Source != "Good morning" {
		t.Fatalf("expected adopted phrase first, got %+v", list.Phrases)
	}

	if rec := ts.do(t, apiRequest(http.MethodDelete, "/api/phrases/"+id, token, nil)); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := ts.do(t, apiRequest(http.MethodDelete, "/api/phrases/"+id, token, nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
	if rec := ts.do(t, apiRequest(http.MethodDelete, "/api/phrases/abc", token, nil)); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}

	got := ts.actions(t)
	want := []string{
		"login|alice|success",
		"manual_upsert|alice|Good morning -> おはよう",
		"adopt|alice|src=Good morning,id=" + id,
		"delete|alice|src=Good morning,id=" + id,
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("activity = %q, want %q", got, want)
	}
}

func multipartCSV(t *testing.T, target, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "phrases.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAPIImportSkipsUnreviewedRows(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bearerToken(t)

	req := multipartCSV(t, "/api/import", "\ufeffSource,Target,Tags\nHello,こんにちは,greeting\nBye,[要確認],\n,orphan,\n")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := ts.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d body %s", rec.Code, rec.Body.String())
	}
	var summary api.ImportSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Imported != 1 || summary.Skipped != 1 || summary.Invalid != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	req = multipartCSV(t, "/api/import", "english,japanese\nHello,こんにちは\n")
	req.Header.Set("Authorization", "Bearer "+token)
	if rec := ts.do(t, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing columns status = %d", rec.Code)
	}
}

func TestUploadPageRecordsRows(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.sessionCookie(t, "alice", "pass1")

	req := multipartCSV(t, "/upload", "source,target\nHello,こんにちは\nThanks,ありがとう\n")
	req.AddCookie(cookie)
	rec := ts.do(t, req)
	if rec.Code != http.StatusSeeOther || !strings.Contains(rec.Header().Get("Location"), "msg=") {
		t.Fatalf("upload status = %d location %q", rec.Code, rec.Header().Get("Location"))
	}
	got := ts.actions(t)
	if got[len(got)-1] != "upload_csv|alice|rows=2" {
		t.Fatalf("unexpected activity: %q", got)
	}
}

func TestAdoptPrefillsEditor(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.sessionCookie(t, "alice", "pass1")
	id := testsupport.MustUpsert(t, ts.store, "See you tomorrow", "また明日")

	form := url.Values{"q": {"tomorrow see you"}, "limit": {"3"}}
	req := httptest.NewRequest(http.MethodPost, "/adopt/"+strconv.FormatInt(id, 10), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := ts.do(t, req)
	location := rec.Header().Get("Location")
	if rec.Code != http.StatusSeeOther || !strings.Contains(location, "selected="+strconv.FormatInt(id, 10)) {
		t.Fatalf("adopt status = %d location %q", rec.Code, location)
	}

	page := httptest.NewRequest(http.MethodGet, location, nil)
	page.AddCookie(cookie)
	rec = ts.do(t, page)
	body := rec.Body.String()
	if !strings.Contains(body, `<textarea name="target" rows="3">また明日</textarea>`) {
		t.Fatalf("editor not prefilled: %s", body)
	}

	form = url.Values{"q": {"tomorrow see you"}, "target": {"明日ね"}, "context": {"casual"}}
	req = httptest.NewRequest(http.MethodPost, "/translations", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	if rec := ts.do(t, req); rec.Code != http.StatusSeeOther {
		t.Fatalf("save status = %d", rec.Code)
	}
	saved, err := ts.store.FindBySource(context.Background(), "tomorrow see you")
	if err != nil || saved == nil || saved.Target != "明日ね" || saved.Context != "casual" {
		t.Fatalf("saved translation = %+v, err %v", saved, err)
	}

	got := ts.actions(t)
	wantTail := []string{
		"adopt|alice|src=See you tomorrow,id=" + strconv.FormatInt(id, 10),
		"save_translation|alice|tomorrow see you -> 明日ね",
	}
	if strings.Join(got[len(got)-2:], "\n") != strings.Join(wantTail, "\n") {
		t.Fatalf("activity = %q", got)
	}
}

func TestExportAndActivityDownload(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.sessionCookie(t, "alice", "pass1")
	testsupport.MustUpsert(t, ts.store, "Hello", "こんにちは")

	req := httptest.NewRequest(http.MethodGet, "/export.csv", nil)
	req.AddCookie(cookie)
	rec := ts.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "\ufeffid,source,target") {
		t.Fatalf("export missing BOM header: %q", rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "phrases_export.csv") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}

	req = httptest.NewRequest(http.MethodGet, "/activity.csv", nil)
	req.AddCookie(cookie)
	rec = ts.do(t, req)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "timestamp,user,action,details") {
		t.Fatalf("activity download status = %d body %q", rec.Code, rec.Body.String())
	}

	got := ts.actions(t)
	want := []string{"login|alice|success", "export_csv|alice|rows=1", "download_log|alice|"}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("activity = %q, want %q", got, want)
	}
}

func TestHelpAndHealthArePublic(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/help", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<table>") {
		t.Fatalf("help status = %d body %s", rec.Code, rec.Body.String())
	}

	testsupport.MustUpsert(t, ts.store, "Hello", "こんにちは")
	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var health api.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Phrases != 1 || len(health.Checks) == 0 {
		t.Fatalf("unexpected health: %+v", health)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}

func TestActivityFeedBroadcastsEntries(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bearerToken(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ts.hub.run(ctx)

	httpServer := httptest.NewServer(ts.Handler())
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws/activity"
	header := http.Header{"Authorization": {"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for ts.hub.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := ts.log.Append(context.Background(), activity.Entry{User: "bob", Action: activity.ActionExportCSV, Details: "rows=3"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var entry api.ActivityEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.User != "bob" || entry.Action != "export_csv" || entry.Details != "rows=3" || entry.Timestamp == "" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatal("expected unauthenticated dial to fail")
	}
}

func TestRunRefusesSecondInstance(t *testing.T) {
	ts := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- ts.Run(ctx, func(addr string) { ready <- addr })
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server never became ready")
	}

	resp, err := http.Get("http://" + addr + "/api/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	second, err := New(ts.cfg, Options{Store: ts.store, Activity: ts.log})
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Run(context.Background(), nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected lock conflict, got %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
