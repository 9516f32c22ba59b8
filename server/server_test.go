package server

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/lineserve/auth"
	"github.com/jonwraymond/lineserve/cache"
	"github.com/jonwraymond/lineserve/health"
	"github.com/jonwraymond/lineserve/lines"
	"github.com/jonwraymond/lineserve/resilience"
)

const fourLines = "This is the first line.\nSecond.\nThird line that is longer...\nLast.\n"

func newLookuper(t *testing.T, content string) (lines.Lookuper, *lines.Index) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	ix, err := lines.Build(context.Background(), path)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	mw, err := lines.NewCache(cache.Policy{Capacity: 16}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return lines.Cached(lines.NewReader(ix, nil), mw), ix
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, hdr ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestNew_RequiresLookuper(t *testing.T) {
	if _, err := New(Options{}); err != ErrNilLookuper {
		t.Errorf("New() error = %v, want ErrNilLookuper", err)
	}
}

func TestServeLine(t *testing.T) {
	l, _ := newLookuper(t, fourLines)
	ts := newTestServer(t, Options{Lookuper: l})

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/lines/0", http.StatusOK, "This is the first line."},
		{"/lines/1", http.StatusOK, "Second."},
		{"/lines/2", http.StatusOK, "Third line that is longer..."},
		{"/lines/3", http.StatusOK, "Last."},
		{"/lines/4", http.StatusRequestEntityTooLarge, ""},
		{"/lines/-1", http.StatusRequestEntityTooLarge, ""},
		{"/lines/" + strconv.Itoa(math.MaxInt32), http.StatusRequestEntityTooLarge, ""},
		{"/lines/99999999999999999999999", http.StatusRequestEntityTooLarge, ""},
		{"/lines/abc", http.StatusRequestEntityTooLarge, ""},
		{"/lines/1.5", http.StatusRequestEntityTooLarge, ""},
		{"/lines/+1", http.StatusRequestEntityTooLarge, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if tt.wantCode == http.StatusOK {
				if ct := resp.Header.Get("Content-Type"); ct != ContentTypeLatin1 {
					t.Errorf("Content-Type = %q", ct)
				}
			}
		})
	}
}

func TestServeLine_EmptyLineIsOK(t *testing.T) {
	l, _ := newLookuper(t, "a\n\nb\n")
	ts := newTestServer(t, Options{Lookuper: l})

	resp, body := get(t, ts.URL+"/lines/1")
	if resp.StatusCode != http.StatusOK || body != "" {
		t.Errorf("status = %d, body = %q; want 200 and empty", resp.StatusCode, body)
	}
}

func TestServeLine_Charset(t *testing.T) {
	l, _ := newLookuper(t, "caf\xe9\n")

	latin := newTestServer(t, Options{Lookuper: l})
	if _, body := get(t, latin.URL+"/lines/0"); body != "caf\xe9" {
		t.Errorf("latin1 body = %q", body)
	}

	utf := newTestServer(t, Options{Lookuper: l, UTF8: true})
	resp, body := get(t, utf.URL+"/lines/0")
	if body != "café" {
		t.Errorf("utf-8 body = %q", body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != ContentTypeUTF8 {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServeLine_MethodNotAllowed(t *testing.T) {
	l, _ := newLookuper(t, fourLines)
	ts := newTestServer(t, Options{Lookuper: l})

	resp, err := http.Post(ts.URL+"/lines/0", "text/plain", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestServeLine_BulkheadFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	blocking := lines.LookupFunc(func(context.Context, int) lines.Result {
		once.Do(func() { close(started) })
		<-release
		return lines.Present("x")
	})
	bh := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 1})
	ts := newTestServer(t, Options{Lookuper: lines.Limit(blocking, bh)})

	done := make(chan int, 1)
	go func() {
		resp, err := http.Get(ts.URL + "/lines/0")
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first lookup never started")
	}

	resp, _ := get(t, ts.URL+"/lines/1")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	close(release)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first request status = %d, want 200", code)
	}
}

func TestServeLine_CachedLineServedWhileBulkheadFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte(fourLines), 0o600); err != nil {
		t.Fatal(err)
	}
	ix, err := lines.Build(context.Background(), path)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	mw, err := lines.NewCache(cache.Policy{Capacity: 16}, nil)
	if err != nil {
		t.Fatal(err)
	}
	bh := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 1})
	ts := newTestServer(t, Options{
		Lookuper: lines.Cached(lines.Limit(lines.NewReader(ix, nil), bh), mw),
	})

	if resp, body := get(t, ts.URL+"/lines/0"); resp.StatusCode != http.StatusOK || body != "This is the first line." {
		t.Fatalf("warm GET /lines/0 = %d %q", resp.StatusCode, body)
	}

	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	resp, body := get(t, ts.URL+"/lines/0")
	if resp.StatusCode != http.StatusOK || body != "This is the first line." {
		t.Errorf("cached GET /lines/0 with full bulkhead = %d %q, want 200", resp.StatusCode, body)
	}
	if resp, _ := get(t, ts.URL+"/lines/1"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("uncached GET /lines/1 with full bulkhead = %d, want 503", resp.StatusCode)
	}

	bh.Release()

	if resp, body := get(t, ts.URL+"/lines/1"); resp.StatusCode != http.StatusOK || body != "Second." {
		t.Errorf("GET /lines/1 after release = %d %q, want 200 Second.", resp.StatusCode, body)
	}
}

func TestServeLine_Auth(t *testing.T) {
	l, _ := newLookuper(t, fourLines)
	ts := newTestServer(t, Options{
		Lookuper:      l,
		Authenticator: auth.New(auth.Config{APIKeys: []string{"k1"}}),
	})

	if resp, _ := get(t, ts.URL+"/lines/0"); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", resp.StatusCode)
	}
	if resp, _ := get(t, ts.URL+"/lines/0", "X-API-Key", "wrong"); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad key: status = %d, want 401", resp.StatusCode)
	}
	if resp, body := get(t, ts.URL+"/lines/0", "X-API-Key", "k1"); resp.StatusCode != http.StatusOK || body != "This is the first line." {
		t.Errorf("good key: status = %d, body = %q", resp.StatusCode, body)
	}
	if resp, _ := get(t, ts.URL+"/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz must not require auth, status = %d", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	l, ix := newLookuper(t, fourLines)
	agg := health.NewAggregator()
	agg.Register(lines.NewIndexChecker(ix))
	ts := newTestServer(t, Options{Lookuper: l, Health: agg})

	if resp, body := get(t, ts.URL+"/readyz"); resp.StatusCode != http.StatusOK || body != "OK" {
		t.Errorf("/readyz = %d %q", resp.StatusCode, body)
	}
	if resp, body := get(t, ts.URL+"/health"); resp.StatusCode != http.StatusOK || !strings.Contains(body, `"index"`) {
		t.Errorf("/health = %d %q", resp.StatusCode, body)
	}

	if err := os.Remove(ix.Path()); err != nil {
		t.Fatal(err)
	}
	if resp, _ := get(t, ts.URL+"/readyz"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("/readyz after removal = %d, want 503", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	l, _ := newLookuper(t, fourLines)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "lines_lookup_total 1\n")
	})

	without := newTestServer(t, Options{Lookuper: l})
	if resp, _ := get(t, without.URL+"/metrics"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("/metrics without handler = %d, want 404", resp.StatusCode)
	}

	with := newTestServer(t, Options{Lookuper: l, Metrics: metrics})
	if resp, body := get(t, with.URL+"/metrics"); resp.StatusCode != http.StatusOK || !strings.Contains(body, "lines_lookup_total") {
		t.Errorf("/metrics = %d %q", resp.StatusCode, body)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"-1", -1, true},
		{"-0", 0, true},
		{"+7", 0, false},
		{"+0", 0, false},
		{"", 0, false},
		{"1e3", 0, false},
		{" 1", 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseIndex(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseIndex(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsUTF8(t *testing.T) {
	if !IsUTF8("UTF-8") || IsUTF8("iso-8859-1") || IsUTF8("") {
		t.Error("IsUTF8 mismatch")
	}
}
