package route

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.soquee.net/route/internal/rlog"
	"code.soquee.net/route/routeconfig"
)

func TestRegisterDuplicateURLMapReplaces(t *testing.T) {
	r := newRouter(t)
	d := HandlerDescriptor{Names: []string{"id"}}

	first, err := r.Register("h1", "/articles/$1", "", 0, false, false, nil, d, false)
	require.NoError(t, err)
	second, err := r.Register("h2", "/articles/$1", "", 0, false, false, nil, d, false)
	require.NoError(t, err)

	results, err := r.Dispatch("", false, 0, false, "/articles/1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Same(t, second, results[0].Route)
	assert.NotSame(t, first, results[0].Route)
}

// TestRegistrationOrderProperty exercises spec §8's "Registration order"
// invariant: registering B after an identical-url-map A replaces A, so
// removing B by handler afterward leaves nothing matching — not A, which
// is already gone.
func TestRegistrationOrderProperty(t *testing.T) {
	r := newRouter(t)
	d := HandlerDescriptor{Names: []string{"id"}}

	_, err := r.Register("a", "/p/$1", "", 0, false, false, nil, d, false)
	require.NoError(t, err)
	b, err := r.Register("b", "/p/$1", "", 0, false, false, nil, d, false)
	require.NoError(t, err)

	results, err := r.Dispatch("", false, 0, false, "/p/1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Same(t, b, results[0].Route)

	r.RemoveHandler("b")
	results, err = r.Dispatch("", false, 0, false, "/p/1")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRemoveURLByPattern(t *testing.T) {
	r := newRouter(t)
	d := HandlerDescriptor{Names: []string{"id"}}
	_, err := r.Register("h", "/articles/$1", "", 0, false, false, nil, d, false)
	require.NoError(t, err)

	n := r.RemoveURL("/articles/$1", "", 0, false)
	assert.Equal(t, 1, n)

	results, err := r.Dispatch("", false, 0, false, "/articles/1")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRemoveHandlerByFuncIdentity(t *testing.T) {
	r := newRouter(t)
	d := HandlerDescriptor{}
	called := func() {}
	_, err := r.Register(called, "/a", "", 0, false, false, nil, d, false)
	require.NoError(t, err)
	_, err = r.Register(called, "/b", "", 0, false, false, nil, d, false)
	require.NoError(t, err)

	n := r.RemoveHandler(called)
	assert.Equal(t, 2, n)

	results, err := r.Dispatch("", false, 0, false, "/a")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClearPreservesSystemRoutes(t *testing.T) {
	r := newRouter(t)
	dSys := HandlerDescriptor{}
	dUser := HandlerDescriptor{}
	sys, err := r.Register("sys", "/system", "", 0, false, false, nil, dSys, true)
	require.NoError(t, err)
	_, err = r.Register("user", "/user", "", 0, false, false, nil, dUser, false)
	require.NoError(t, err)

	r.Clear()

	results, err := r.Dispatch("", false, 0, false, "/system")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Same(t, sys, results[0].Route)

	results, err = r.Dispatch("", false, 0, false, "/user")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClearLogsSystemRouteReinsertion(t *testing.T) {
	var buf bytes.Buffer
	r := New(WithLogger(rlog.New(rlog.WithWriter(&buf))))
	d := HandlerDescriptor{}
	_, err := r.Register("sys", "/system", "", 0, false, false, nil, d, true)
	require.NoError(t, err)

	r.Clear()

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "reinserted 1 system route")
}

func TestWithConfigCaseInsensitiveHosts(t *testing.T) {
	d := HandlerDescriptor{}
	no, yes := false, true

	sensitive := New(WithConfig(routeconfig.Config{CaseInsensitiveHosts: &no}))
	_, err := sensitive.Register("h", "/a", "Example.com", 0, false, false, nil, d, false)
	require.NoError(t, err)

	results, err := sensitive.Dispatch("example.com", true, 0, false, "/a")
	require.NoError(t, err)
	assert.Empty(t, results, "case-sensitive router must not fold host case")

	results, err = sensitive.Dispatch("Example.com", true, 0, false, "/a")
	require.NoError(t, err)
	require.Len(t, results, 1)

	insensitive := New(WithConfig(routeconfig.Config{CaseInsensitiveHosts: &yes}))
	_, err = insensitive.Register("h", "/a", "Example.com", 0, false, false, nil, d, false)
	require.NoError(t, err)

	results, err = insensitive.Dispatch("example.com", true, 0, false, "/a")
	require.NoError(t, err)
	require.Len(t, results, 1, "case-insensitive router must fold host case")
}

// TestWithConfigAbsentFileKeepsDefault exercises the code-review-confirmed
// fix: a zero-value Config (routeconfig.Load found no route.yaml) must not
// silently flip caseInsensitiveHosts to false.
func TestWithConfigAbsentFileKeepsDefault(t *testing.T) {
	r := New(WithConfig(routeconfig.Config{}))
	d := HandlerDescriptor{}
	_, err := r.Register("h", "/a", "Example.com", 0, false, false, nil, d, false)
	require.NoError(t, err)

	results, err := r.Dispatch("example.com", true, 0, false, "/a")
	require.NoError(t, err)
	require.Len(t, results, 1, "absent config must leave the case-insensitive default in place")
}

func TestPackageLevelDelegatesToDefault(t *testing.T) {
	Clear()
	d := HandlerDescriptor{Names: []string{"id"}}
	route, err := Register("h", "/pkg-level/$1", "", 0, false, false, nil, d, false)
	require.NoError(t, err)
	defer RemoveHandler("h")

	results, err := Dispatch("", false, 0, false, "/pkg-level/7")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Same(t, route, results[0].Route)

	url, err := Build(route, []interface{}{"7"}, nil, "", false, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "/pkg-level/7", url)
}
