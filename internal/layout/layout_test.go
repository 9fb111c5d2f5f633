package layout

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authed(v bool) AuthChecker { return func() bool { return v } }

func TestClassify(t *testing.T) {
	assert.Equal(t, RouteAuth, Classify("/auth"))
	assert.Equal(t, RouteAuth, Classify("/auth/login"))
	assert.Equal(t, RouteApp, Classify("/"))
	assert.Equal(t, RouteApp, Classify("/dashboard"))
	assert.Equal(t, RouteApp, Classify("/data/auth"))
	assert.Equal(t, "auth", RouteAuth.String())
	assert.Equal(t, "app", RouteApp.String())
}

func TestDecide_AuthRouteHasNoChrome(t *testing.T) {
	for _, v := range []bool{true, false} {
		c := Decide("/auth/login", authed(v))
		assert.False(t, c.Header)
		assert.False(t, c.Sidebar)
		assert.Equal(t, RouteAuth, c.Kind)
	}
}

func TestDecide_AppRoute(t *testing.T) {
	c := Decide("/dashboard", authed(true))
	assert.True(t, c.Header)
	assert.True(t, c.Sidebar)

	c = Decide("/dashboard", authed(false))
	assert.True(t, c.Header)
	assert.False(t, c.Sidebar)
}

func TestDecide_SafeDefaults(t *testing.T) {
	c := Decide("/dashboard", nil)
	assert.True(t, c.Header)
	assert.False(t, c.Sidebar)

	c = Decide("/dashboard", func() bool { panic("session store unavailable") })
	assert.True(t, c.Header)
	assert.False(t, c.Sidebar)
}

func TestDecide_EvaluatedFreshEachCall(t *testing.T) {
	state := false
	check := func() bool { return state }

	assert.False(t, Decide("/chat", check).Sidebar)
	state = true
	assert.True(t, Decide("/chat", check).Sidebar)
}

func newTestRenderer(t *testing.T, authenticated bool) *Renderer {
	t.Helper()
	rd, err := NewRenderer(func(*http.Request) bool { return authenticated }, "en-US", nil)
	require.NoError(t, err)
	return rd
}

func TestRenderer_ChromeFollowsDecision(t *testing.T) {
	cases := []struct {
		path          string
		authenticated bool
		header        bool
		sidebar       bool
	}{
		{"/auth/login", true, false, false},
		{"/auth/login", false, false, false},
		{"/dashboard", true, true, true},
		{"/dashboard", false, true, false},
	}
	for _, tc := range cases {
		rd := newTestRenderer(t, tc.authenticated)
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		rec := httptest.NewRecorder()

		rd.Render(rec, req, http.StatusOK, "error.html", "Test", map[string]interface{}{
			"Code": "200", "Message": "ok", "Description": "body",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Equal(t, tc.header, containsID(body, "site-header"), "%s header", tc.path)
		assert.Equal(t, tc.sidebar, containsID(body, "sidebar"), "%s sidebar", tc.path)
		assert.Contains(t, body, "body")
	}
}

func TestRenderer_SecurityHeadersAndStatus(t *testing.T) {
	rd := newTestRenderer(t, false)
	rec := httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/missing", nil), http.StatusNotFound, "error.html", "Not found", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestRenderer_UnknownPage(t *testing.T) {
	rd := newTestRenderer(t, false)
	rec := httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "nope.html", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRenderer_CSRFMetaTag(t *testing.T) {
	rd := newTestRenderer(t, false)
	rec := httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "error.html", "Test", nil)
	assert.NotContains(t, rec.Body.String(), `name="csrf-token"`)

	rd.UseCSRF(func(w http.ResponseWriter, r *http.Request) string {
		http.SetCookie(w, &http.Cookie{Name: "csrf_token", Value: "tok-1"})
		return "tok-1"
	})
	rec = httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "error.html", "Test", nil)
	assert.Contains(t, rec.Body.String(), `<meta name="csrf-token" content="tok-1">`)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "csrf_token=tok-1")
}

func TestRenderer_AllPagesParse(t *testing.T) {
	rd := newTestRenderer(t, true)
	for _, p := range Pages {
		assert.Contains(t, rd.pages, p)
	}
}

func containsID(body, id string) bool {
	return strings.Contains(body, `id="`+id+`"`)
}
