package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parsePatternTests = [...]struct {
	url     string
	names   []string
	variadic bool
	wantErr bool
}{
	0: {url: "/articles/$1", names: []string{"id"}},
	1: {url: "/a/$x", names: []string{"x"}},
	2: {url: "/p/$1-$2", names: []string{"a", "b"}},
	3: {url: "/$*", variadic: true},
	4: {url: "/$*/more", variadic: true, wantErr: true},
	5: {url: "/articles/$1", names: nil, wantErr: true},
	6: {url: "/search?q=$1", names: []string{"q"}},
	7: {url: "articles/$1", names: []string{"id"}, wantErr: true},
	8: {url: "/$1/$1", names: []string{"a"}, wantErr: true},
}

func TestParsePattern(t *testing.T) {
	for i, tc := range parsePatternTests {
		d := HandlerDescriptor{Names: tc.names, HasVariadicPositional: tc.variadic}
		_, err := ParsePattern(tc.url, "", 0, false, &d, true)
		if tc.wantErr {
			assert.Errorf(t, err, "case %d", i)
			continue
		}
		assert.NoErrorf(t, err, "case %d", i)
	}
}

func TestParsePatternHostPort(t *testing.T) {
	d := HandlerDescriptor{}

	p, err := ParsePattern("/", "example.com:8080", 0, false, &d, true)
	require.NoError(t, err)
	assert.True(t, p.hasHost)
	assert.Equal(t, "example.com", p.host)
	assert.True(t, p.hasPort)
	assert.Equal(t, 8080, p.port)

	_, err = ParsePattern("/", "example.com:8080", 9090, true, &d, true)
	var dup *DuplicatePortError
	require.ErrorAs(t, err, &dup)
}

func TestParsePatternBadHostReportsFullHost(t *testing.T) {
	d := HandlerDescriptor{}

	_, err := ParsePattern("/", "example.com:notaport", 0, false, &d, true)
	var bad *BadHostError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "example.com:notaport", bad.Host)
}

func TestParsePatternMixedComponent(t *testing.T) {
	d := HandlerDescriptor{Names: []string{"a", "b"}}
	p, err := ParsePattern("/p/$1-$2", "", 0, false, &d, true)
	require.NoError(t, err)
	require.Len(t, p.path, 2)
	comp := p.path[1]
	require.Equal(t, componentMixed, comp.kind)
	groups := comp.regex.FindStringSubmatch("foo-bar")
	require.NotNil(t, groups)
	assert.Equal(t, "foo", groups[1])
	assert.Equal(t, "bar", groups[2])
}

func TestParsePatternStarMustBeLast(t *testing.T) {
	d := HandlerDescriptor{HasVariadicPositional: true}
	_, err := ParsePattern("/a/$*/b", "", 0, false, &d, true)
	var misplaced *MisplacedStarError
	require.ErrorAs(t, err, &misplaced)
}

func TestParsePatternStarForbiddenInQuery(t *testing.T) {
	d := HandlerDescriptor{HasVariadicPositional: true}
	_, err := ParsePattern("/a?q=$*", "", 0, false, &d, true)
	var misplaced *MisplacedStarError
	require.ErrorAs(t, err, &misplaced)
	assert.True(t, misplaced.InQuery)
}

func TestParsePatternRequiresVariadicSinkForStar(t *testing.T) {
	d := HandlerDescriptor{}
	_, err := ParsePattern("/$*", "", 0, false, &d, true)
	var noVariadic *NoVariadicError
	require.ErrorAs(t, err, &noVariadic)
}

func TestDecodeComponentEscaping(t *testing.T) {
	d := HandlerDescriptor{}
	p, err := ParsePattern("/hello%20world", "", 0, false, &d, true)
	require.NoError(t, err)
	require.Len(t, p.path, 1)
	assert.Equal(t, "hello world", p.path[0].literal)
}

func TestDecodeComponentPlusIsSpace(t *testing.T) {
	d := HandlerDescriptor{}
	p, err := ParsePattern("/hello+world", "", 0, false, &d, true)
	require.NoError(t, err)
	assert.Equal(t, "hello world", p.path[0].literal)
}

func TestDecodeComponentRejectsTruncatedEscape(t *testing.T) {
	d := HandlerDescriptor{}
	_, err := ParsePattern("/bad%2", "", 0, false, &d, true)
	assert.Error(t, err)
}

func TestUnknownParameterError(t *testing.T) {
	d := HandlerDescriptor{Names: []string{"a"}}
	_, err := ParsePattern("/$name", "", 0, false, &d, true)
	var unk *UnknownParameterError
	require.ErrorAs(t, err, &unk)
}
