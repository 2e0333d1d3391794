package hashfunc

import (
	"bytes"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobwas/loadring/logging"
)

func TestMD5Hash(t *testing.T) {
	var h MD5
	for _, test := range []struct {
		tokens []string
		exp    int32
	}{
		{[]string{"a", "b"}, 1882525536},
		{[]string{"ab"}, 410973251},
		{[]string{"foo"}, -1396893477},
		{[]string{""}, -736260903},
	} {
		act, err := h.Hash(test.tokens)
		require.NoError(t, err)
		assert.Equal(t, test.exp, act, "tokens %q", test.tokens)
	}
}

func TestMD5Separator(t *testing.T) {
	var h MD5
	a, _ := h.Hash([]string{"a", "bc"})
	b, _ := h.Hash([]string{"ab", "c"})
	require.NotEqual(t, a, b)
}

func TestMD5HashLongUnsupported(t *testing.T) {
	var h MD5
	_, err := h.HashLong([]string{"a"})
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestMD5Concurrent(t *testing.T) {
	var (
		h  MD5
		wg sync.WaitGroup
	)
	exp := h.Sum32("key", "1")
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if act := h.Sum32("key", "1"); act != exp {
					t.Errorf("unexpected hash: %d; want %d", act, exp)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestXXHash(t *testing.T) {
	var h XXHash

	v, err := h.HashLong([]string{""})
	require.NoError(t, err)
	require.Equal(t, uint64(0xef46db3751d8e999), uint64(v))

	v, err = h.HashLong([]string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, int64(xxhash.Sum64String("abc")), v)

	w, err := h.Hash([]string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, int32(v), w)
}

func TestRandom(t *testing.T) {
	a := NewSeededRandom[string](7)
	b := NewSeededRandom[string](7)
	for i := 0; i < 100; i++ {
		x, _ := a.Hash("key")
		y, _ := b.Hash("key")
		require.Equal(t, x, y)
	}
	xs := make(map[int32]bool)
	for i := 0; i < 100; i++ {
		x, _ := a.Hash("key")
		xs[x] = true
	}
	require.Greater(t, len(xs), 1)

	_, err := a.HashLong("key")
	require.NoError(t, err)
	require.True(t, IsRandom[string](a))
	require.False(t, IsRandom[[]string](XXHash{}))
}

func mustParse(t testing.TB, s string) *url.URL {
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func TestURIRegexMatch(t *testing.T) {
	h, err := NewURIRegex(URIRegexConfig{
		Regexes: []string{
			`/nogroups/\d+`,
			`/articles/(\d+)/comments/(\d+)`,
			`/articles/(\d+)`,
		},
		FailOnNoMatch: true,
	})
	require.NoError(t, err)

	var md MD5
	for _, test := range []struct {
		uri    string
		tokens []string
	}{
		{"d2://svc/articles/1/comments/2", []string{"1", "2"}},
		{"d2://svc/articles/42", []string{"42"}},
		{"d2://svc/articles/42?x=1", []string{"42"}},
	} {
		u := mustParse(t, test.uri)
		tokens, ok := h.Tokens(u)
		require.True(t, ok)
		require.Equal(t, test.tokens, tokens)

		act, err := h.Hash(u)
		require.NoError(t, err)
		require.Equal(t, md.Sum32(test.tokens...), act)
	}

	_, err = h.Hash(mustParse(t, "d2://svc/nogroups/1"))
	require.ErrorIs(t, err, ErrNoRegexMatch)

	_, err = h.HashLong(mustParse(t, "d2://svc/articles/1"))
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestURIRegexSticky(t *testing.T) {
	h, err := NewURIRegex(URIRegexConfig{
		Regexes: []string{`/articles/(\d+)`},
	})
	require.NoError(t, err)
	a, _ := h.Hash(mustParse(t, "d2://svc/articles/1?a=b"))
	b, _ := h.Hash(mustParse(t, "d2://other/articles/1"))
	require.Equal(t, a, b)
}

func TestURIRegexNoMatchFallback(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.NewSlog(slog.New(slog.NewTextHandler(buf, nil)))

	h, err := NewURIRegex(
		URIRegexConfig{
			Regexes:       []string{`/articles/(\d+)`},
			WarnOnNoMatch: true,
		},
		WithSeed(1),
		WithLogger(logger),
	)
	require.NoError(t, err)

	ref := NewSeededRandom[*url.URL](1)
	for i := 0; i < 10; i++ {
		act, err := h.Hash(mustParse(t, "d2://svc/other"))
		require.NoError(t, err)
		exp, _ := ref.Hash(nil)
		require.Equal(t, exp, act)
	}
	require.Contains(t, buf.String(), "level=WARN")
	require.Contains(t, buf.String(), "no regex matched")
}

func TestURIRegexInvalid(t *testing.T) {
	_, err := NewURIRegex(URIRegexConfig{Regexes: []string{`(`}})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewURIRegex(URIRegexConfig{
		Regexes:      []string{`(a)`},
		NoMatchLevel: "loud",
	})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew(t *testing.T) {
	for _, test := range []struct {
		name   string
		method string
		cfg    map[string]any
		err    error
		regex  bool
	}{
		{
			name: "default",
		},
		{
			name:   "random seeded",
			method: MethodRandom,
			cfg:    map[string]any{KeySeed: 42},
		},
		{
			name:   "random bad seed",
			method: MethodRandom,
			cfg:    map[string]any{KeySeed: "x"},
			err:    ErrInvalidConfig,
		},
		{
			name:   "regex",
			method: MethodURIRegex,
			cfg: map[string]any{
				KeyRegexes:       []any{`/a/(\d+)`},
				KeyFailOnNoMatch: true,
				KeyWarnOnNoMatch: "false",
				KeyNoMatchLevel:  "debug",
			},
			regex: true,
		},
		{
			name:   "regex strings",
			method: MethodURIRegex,
			cfg: map[string]any{
				KeyRegexes: []string{`/a/(\d+)`},
			},
			regex: true,
		},
		{
			name:   "regex missing",
			method: MethodURIRegex,
			err:    ErrInvalidConfig,
		},
		{
			name:   "regex empty",
			method: MethodURIRegex,
			cfg:    map[string]any{KeyRegexes: []any{}},
			err:    ErrInvalidConfig,
		},
		{
			name:   "regex not a string",
			method: MethodURIRegex,
			cfg:    map[string]any{KeyRegexes: []any{1}},
			err:    ErrInvalidConfig,
		},
		{
			name:   "regex bad bool",
			method: MethodURIRegex,
			cfg: map[string]any{
				KeyRegexes:       []any{`(a)`},
				KeyFailOnNoMatch: 1,
			},
			err: ErrInvalidConfig,
		},
		{
			name:   "unknown",
			method: "md4",
			err:    ErrInvalidConfig,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			f, err := New(test.method, test.cfg)
			if test.err != nil {
				require.True(t, errors.Is(err, test.err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			_, isRegex := f.(*URIRegex)
			require.Equal(t, test.regex, isRegex)
			require.Equal(t, !test.regex, IsRandom(f))
		})
	}
}

func TestNewSeededRandomIsDeterministic(t *testing.T) {
	a, err := New(MethodRandom, map[string]any{KeySeed: 3})
	require.NoError(t, err)
	b, err := New(MethodRandom, map[string]any{KeySeed: 3})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		x, _ := a.Hash(nil)
		y, _ := b.Hash(nil)
		require.Equal(t, x, y)
	}
}
