package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/film-catalog/internal/config"
	"github.com/iliyamo/film-catalog/internal/utils"
)

const secret = "test-secret"

func identityEcho(refresher Refresher) *echo.Echo {
	e := echo.New()
	e.Use(Authenticate(secret, refresher))
	e.GET("/whoami", func(c echo.Context) error {
		id := CurrentIdentity(c)
		return c.JSON(http.StatusOK, map[string]any{"id": id.UserID, "admin": id.IsAdmin()})
	})
	admin := e.Group("/films", RequireAdmin())
	admin.GET("/create/", func(c echo.Context) error { return c.String(http.StatusOK, "form") })
	return e
}

func token(t *testing.T, superuser bool, ttl int) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, 7, "admin", superuser, ttl)
	if err != nil {
		t.Fatal(err)
	}
	return tok.Token
}

func TestAuthenticate_Sources(t *testing.T) {
	e := identityEcho(nil)
	cases := []struct {
		name string
		prep func(r *http.Request)
		want string
	}{
		{"anonymous", func(r *http.Request) {}, `"id":0`},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessCookie, Value: token(t, true, 5)})
		}, `"id":7`},
		{"bearer", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token(t, true, 5))
		}, `"id":7`},
		{"expired", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessCookie, Value: token(t, true, -1)})
		}, `"id":0`},
		{"tampered", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessCookie, Value: token(t, true, 5) + "x"})
		}, `"id":0`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tc.prep(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("body = %s, want %s", rec.Body.String(), tc.want)
			}
		})
	}
}

type fakeRefresher struct {
	calls int
	fail  bool
}

func (f *fakeRefresher) RefreshAccess(_ context.Context, raw string) (utils.AccessToken, utils.Claims, error) {
	f.calls++
	if f.fail || raw != "good-refresh" {
		return utils.AccessToken{}, utils.Claims{}, errors.New("invalid")
	}
	tok, err := utils.NewAccessToken(secret, 7, "admin", true, 5)
	if err != nil {
		return utils.AccessToken{}, utils.Claims{}, err
	}
	claims, err := utils.ParseAccessToken(secret, tok.Token)
	return tok, claims, err
}

func TestAuthenticate_RefreshReissuesAccessToken(t *testing.T) {
	r := &fakeRefresher{}
	e := identityEcho(r)

	req := httptest.NewRequest(http.MethodGet, "/films/create/", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "good-refresh"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if r.calls != 1 {
		t.Fatalf("refresher calls = %d", r.calls)
	}
	var found bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == AccessCookie && ck.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("access cookie not re-issued")
	}
}

func TestRequireAdmin(t *testing.T) {
	r := &fakeRefresher{fail: true}
	e := identityEcho(r)
	cases := []struct {
		name       string
		cookie     string
		refresh    bool
		wantStatus int
	}{
		{"anonymous", "", false, http.StatusFound},
		{"not superuser", token(t, false, 5), false, http.StatusFound},
		{"bad refresh", "", true, http.StatusFound},
		{"superuser", token(t, true, 5), false, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/films/create/?a=1", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessCookie, Value: tc.cookie})
			}
			if tc.refresh {
				req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "stale"})
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusFound {
				want := "/accounts/login/?next=%2Ffilms%2Fcreate%2F%3Fa%3D1"
				if loc := rec.Header().Get("Location"); loc != want {
					t.Fatalf("Location = %q, want %q", loc, want)
				}
			}
		})
	}
}

func TestNewTokenBucket_DisabledPassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil))
	e.POST("/accounts/login/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/accounts/login/", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
}

// memBucket answers the bucket script from memory, one bucket per key.
type memBucket struct {
	tokens map[string]int64
	err    error
	calls  int
}

func (m *memBucket) run(keys []string, args []interface{}) *redis.Cmd {
	m.calls++
	if m.err != nil {
		return redis.NewCmdResult(nil, m.err)
	}
	left, ok := m.tokens[keys[0]]
	if !ok {
		left = int64(args[1].(int))
	}
	if left > 0 {
		m.tokens[keys[0]] = left - 1
		return redis.NewCmdResult([]interface{}{int64(1), left - 1, int64(0)}, nil)
	}
	return redis.NewCmdResult([]interface{}{int64(0), int64(0), args[3].(int64)}, nil)
}

func (m *memBucket) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return m.run(keys, args)
}

func (m *memBucket) EvalSha(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return m.run(keys, args)
}

func (m *memBucket) EvalRO(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return m.run(keys, args)
}

func (m *memBucket) EvalShaRO(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return m.run(keys, args)
}

func (m *memBucket) ScriptExists(context.Context, ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult([]bool{true}, nil)
}

func (m *memBucket) ScriptLoad(context.Context, string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func limitedEcho(s redis.Scripter) *echo.Echo {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		Prefix:         "rl:login",
		KeyStrategy:    "ip",
	}
	e := echo.New()
	e.Use(tokenBucket(cfg, s))
	e.POST("/accounts/login/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	return e
}

func postFrom(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/accounts/login/", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucket_BlocksWhenEmpty(t *testing.T) {
	bucket := &memBucket{tokens: map[string]int64{}}
	e := limitedEcho(bucket)

	wantRemaining := []string{"1", "0"}
	for i, want := range wantRemaining {
		rec := postFrom(e, "10.0.0.1")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != want {
			t.Fatalf("request %d: remaining %q, want %q", i+1, got, want)
		}
	}

	rec := postFrom(e, "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("Retry-After = %q, want 60", got)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Fatalf("X-RateLimit-Limit = %q", got)
	}

	if rec := postFrom(e, "10.0.0.2"); rec.Code != http.StatusNoContent {
		t.Fatalf("other client: status %d", rec.Code)
	}
	if _, ok := bucket.tokens["rl:login:ip:10.0.0.1"]; !ok {
		t.Fatalf("bucket keys = %v", bucket.tokens)
	}
}

func TestTokenBucket_RedisErrorFailsOpen(t *testing.T) {
	bucket := &memBucket{tokens: map[string]int64{}, err: errors.New("connection refused")}
	e := limitedEcho(bucket)
	for i := 0; i < 3; i++ {
		if rec := postFrom(e, "10.0.0.1"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i+1, rec.Code)
		}
	}
	if bucket.calls != 3 {
		t.Fatalf("script calls = %d, want 3", bucket.calls)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/accounts/login/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	SetIdentity(c, Identity{UserID: 3, Superuser: true})

	cases := map[string]string{
		"ip":      "rl:ip:10.0.0.1",
		"user":    "rl:user:3",
		"ip_user": "rl:ip:10.0.0.1:user:3",
	}
	for strategy, want := range cases {
		got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c)
		if got != want {
			t.Errorf("%s: key = %q, want %q", strategy, got, want)
		}
	}
}
