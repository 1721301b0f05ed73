package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/matzehuels/siteview/pkg/cache"
	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/generate"
	"github.com/matzehuels/siteview/pkg/pipeline"
	"github.com/matzehuels/siteview/pkg/store"
)

const threeLayouts = `{"layouts":[
 {"buildings":[{"x":20,"y":20,"w":10,"h":10,"type":"A"}],"towersA":1,"towersB":0,"builtArea":100},
 {"buildings":[{"x":30,"y":30,"w":10,"h":10,"type":"B"}],"towersA":0,"towersB":1,"builtArea":100},
 {"buildings":[],"towersA":0,"towersB":0,"builtArea":0}
]}`

// snapshotJSON mirrors Snapshot with plain types for decoding.
type snapshotJSON struct {
	State    string `json:"state"`
	Count    int    `json:"candidates"`
	Selected int    `json:"selected"`
	Title    string `json:"title"`
	Controls []struct {
		Label  string `json:"label"`
		Active bool   `json:"active"`
	} `json:"controls"`
	Stats *struct {
		TowersA   string `json:"towersA"`
		BuiltArea string `json:"builtArea"`
		Status    string `json:"status"`
	} `json:"stats"`
	Loading bool       `json:"loading"`
	Error   *ErrorBody `json:"error"`
	SetID   string     `json:"set_id"`
}

type fixture struct {
	session *Session
	server  *Server
	http    *httptest.Server
}

func newFixture(t *testing.T, status int, body string, sessionOpts []SessionOption, serverOpts ...Option) *fixture {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(upstream.Close)

	session := NewSession(generate.NewHTTPClient(upstream.URL), sessionOpts...)
	srv := New(session, serverOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	srv.Start(ctx)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{session: session, server: srv, http: ts}
}

func (f *fixture) do(t *testing.T, method, path string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.http.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func (f *fixture) state(t *testing.T) snapshotJSON {
	t.Helper()
	resp, body := f.do(t, http.MethodGet, "/api/state")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state status = %d", resp.StatusCode)
	}
	var snap snapshotJSON
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode state: %v\n%s", err, body)
	}
	return snap
}

func (f *fixture) generate(t *testing.T) {
	t.Helper()
	resp, _ := f.do(t, http.MethodPost, "/api/generate")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("generate status = %d", resp.StatusCode)
	}
	f.session.Wait()
}

func TestStateEmpty(t *testing.T) {
	f := newFixture(t, http.StatusOK, threeLayouts, nil)

	snap := f.state(t)
	if snap.State != "empty" || snap.Count != 0 || snap.Selected != -1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Controls == nil || len(snap.Controls) != 0 {
		t.Errorf("controls should be an empty list, got %v", snap.Controls)
	}
	if snap.Stats != nil || snap.Loading || snap.Error != nil {
		t.Errorf("empty session should have no stats, loading or error: %+v", snap)
	}
}

func TestGenerateAndSelect(t *testing.T) {
	f := newFixture(t, http.StatusOK, threeLayouts, nil)
	f.generate(t)

	snap := f.state(t)
	if snap.State != "browsing" || snap.Count != 3 || snap.Selected != 0 || snap.Loading {
		t.Fatalf("after generate: %+v", snap)
	}
	if snap.Title != "Layout #1" {
		t.Errorf("title = %q", snap.Title)
	}
	if snap.Stats == nil || snap.Stats.TowersA != "1" || snap.Stats.Status != "VALID COMPLIANT" {
		t.Errorf("stats = %+v", snap.Stats)
	}
	if len(snap.Controls) != 3 || !snap.Controls[0].Active {
		t.Errorf("controls = %+v", snap.Controls)
	}

	resp, body := f.do(t, http.MethodPost, "/api/select/2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select status = %d: %s", resp.StatusCode, body)
	}
	if got := f.state(t); got.Selected != 2 || !got.Controls[2].Active || got.Controls[0].Active {
		t.Errorf("after select: %+v", got)
	}

	tests := []struct {
		path string
		code errors.Code
	}{
		{"/api/select/9", errors.ErrCodeInvalidInput},
		{"/api/select/-1", errors.ErrCodeInvalidInput},
		{"/api/select/two", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := f.do(t, http.MethodPost, tt.path)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d", resp.StatusCode)
			}
			var out struct{ Error ErrorBody }
			json.Unmarshal(body, &out)
			if out.Error.Code != tt.code {
				t.Errorf("code = %q", out.Error.Code)
			}
		})
	}
	if got := f.state(t); got.Selected != 2 {
		t.Errorf("rejected selection changed the view: %+v", got)
	}
}

func TestGenerateFailure(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError, `oops`, nil)
	f.generate(t)

	snap := f.state(t)
	if snap.Loading {
		t.Error("loading should be cleared after a failure")
	}
	if snap.Error == nil || snap.Error.Code != errors.ErrCodeUpstreamStatus {
		t.Errorf("error = %+v", snap.Error)
	}
	if snap.State != "empty" {
		t.Errorf("failed generation should leave the browser empty, got %s", snap.State)
	}
}

func TestFrameEndpoints(t *testing.T) {
	f := newFixture(t, http.StatusOK, threeLayouts, nil)

	if resp, _ := f.do(t, http.MethodGet, "/api/frame.svg"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("empty frame.svg status = %d", resp.StatusCode)
	}

	f.generate(t)

	resp, body := f.do(t, http.MethodGet, "/api/frame.svg")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("frame.svg = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.Contains(body, []byte("<title>Layout #1</title>")) || !bytes.Contains(body, []byte("#3b82f6")) {
		t.Errorf("frame.svg body:\n%s", body)
	}

	resp, body = f.do(t, http.MethodGet, "/api/frame.png")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("frame.png status = %d", resp.StatusCode)
	}
	if _, err := png.Decode(bytes.NewReader(body)); err != nil {
		t.Errorf("frame.png: %v", err)
	}

	resp, body = f.do(t, http.MethodGet, "/api/frame.json")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"ops"`)) {
		t.Errorf("frame.json = %d %s", resp.StatusCode, body)
	}

	if resp, _ := f.do(t, http.MethodGet, "/api/frame.gif"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("frame.gif status = %d", resp.StatusCode)
	}
}

func TestCandidateArtifactsAreCached(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(c, nil, nil)
	f := newFixture(t, http.StatusOK, threeLayouts, nil, WithRunner(runner))
	f.generate(t)

	resp, first := f.do(t, http.MethodGet, "/api/candidates/1.svg")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !bytes.Contains(first, []byte("<title>Layout #2</title>")) || !bytes.Contains(first, []byte("#10b981")) {
		t.Errorf("candidate 1 svg:\n%s", first)
	}

	layout, err := f.session.Candidate(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	key := runner.Keyer.ArtifactKey(cache.HashLayout(layout), (&pipeline.Options{Locale: "en-US", Title: "Layout #2"}).ArtifactKeyOpts("svg"))
	if _, hit, _ := c.Get(context.Background(), key); !hit {
		t.Error("artifact should be cached after the first request")
	}

	_, second := f.do(t, http.MethodGet, "/api/candidates/1.svg")
	if !bytes.Equal(first, second) {
		t.Error("cached artifact differs")
	}

	if resp, _ := f.do(t, http.MethodGet, "/api/candidates/7.png"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing candidate status = %d", resp.StatusCode)
	}
	if resp, _ := f.do(t, http.MethodGet, "/api/candidates/0.pdf"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad format status = %d", resp.StatusCode)
	}
}

func TestRecorderStoresSets(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, http.StatusOK, threeLayouts, []SessionOption{WithRecorder(fs)})
	f.generate(t)

	snap := f.state(t)
	if snap.SetID == "" {
		t.Fatal("snapshot should carry the stored set id")
	}
	set, err := fs.Get(context.Background(), snap.SetID)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Layouts) != 3 {
		t.Errorf("stored %d layouts", len(set.Layouts))
	}
}

func TestIndexPage(t *testing.T) {
	f := newFixture(t, http.StatusOK, threeLayouts, nil)
	resp, body := f.do(t, http.MethodGet, "/")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte("/ws")) {
		t.Errorf("index = %d", resp.StatusCode)
	}
}

func TestWebsocket(t *testing.T) {
	f := newFixture(t, http.StatusOK, threeLayouts, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(f.http.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() (string, json.RawMessage) {
		t.Helper()
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return msg.Type, msg.Payload
	}
	write := func(s string) {
		t.Helper()
		if err := conn.Write(ctx, websocket.MessageText, []byte(s)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	waitFor := func(cond func(snapshotJSON) bool) snapshotJSON {
		t.Helper()
		for {
			typ, payload := read()
			if typ != MsgSnapshot {
				continue
			}
			var snap snapshotJSON
			json.Unmarshal(payload, &snap)
			if cond(snap) {
				return snap
			}
		}
	}

	if typ, _ := read(); typ != MsgSnapshot {
		t.Fatalf("first message = %s, want snapshot", typ)
	}

	write(`{"type":"generate"}`)
	waitFor(func(s snapshotJSON) bool { return s.Count == 3 && !s.Loading })

	write(`{"type":"select","payload":{"index":1}}`)
	snap := waitFor(func(s snapshotJSON) bool { return s.Selected == 1 })
	if snap.Stats == nil || snap.Stats.TowersA != "0" {
		t.Errorf("stats after select = %+v", snap.Stats)
	}

	write(`{"type":"select","payload":{"index":5}}`)
	typ, payload := read()
	if typ != MsgError {
		t.Fatalf("got %s, want error", typ)
	}
	var body ErrorBody
	json.Unmarshal(payload, &body)
	if body.Code != errors.ErrCodeInvalidInput {
		t.Errorf("error code = %s", body.Code)
	}

	write(`{"type":"dance"}`)
	if typ, _ := read(); typ != MsgError {
		t.Errorf("unknown intent should produce an error, got %s", typ)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusBadGateway},
		{errors.New(errors.ErrCodeStore, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
