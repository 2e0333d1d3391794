package hashfunc

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/gobwas/loadring/logging"
	"github.com/gobwas/loadring/xrand"
)

// URIRegexConfig describes URIRegex hash function.
type URIRegexConfig struct {
	// Regexes is an ordered list of patterns tried against request URI.
	Regexes []string

	// FailOnNoMatch makes Hash() return ErrNoRegexMatch when no pattern
	// matches. Otherwise a random value is returned.
	FailOnNoMatch bool

	// WarnOnNoMatch makes URIRegex log a message when no pattern matches.
	WarnOnNoMatch bool

	// NoMatchLevel is a level of the message logged when WarnOnNoMatch is
	// set. Empty value means logging.LevelWarn.
	NoMatchLevel logging.Level
}

// URIRegex hashes request URI by capture groups of the first matching
// pattern. Captured groups are hashed by MD5.
//
// Patterns without capture groups are never used as a match. When no pattern
// matches URIRegex either fails or falls back to a random value, which means
// that such requests are not sticky.
type URIRegex struct {
	patterns      []*regexp.Regexp
	failOnNoMatch bool
	warnOnNoMatch bool
	noMatchLevel  logging.Level

	md5    MD5
	rand   *xrand.Rand
	logger logging.Logger
}

var _ Function[*url.URL] = (*URIRegex)(nil)

// NewURIRegex compiles patterns from cfg and returns URIRegex hash function.
// It returns error wrapping ErrInvalidConfig if some pattern can not be
// compiled.
func NewURIRegex(cfg URIRegexConfig, opts ...Option) (*URIRegex, error) {
	o := newOptions(opts)
	if !cfg.NoMatchLevel.Valid() {
		return nil, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, cfg.NoMatchLevel)
	}
	ps := make([]*regexp.Regexp, len(cfg.Regexes))
	for i, s := range cfg.Regexes {
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("%w: regex #%d %q: %v", ErrInvalidConfig, i, s, err)
		}
		ps[i] = re
	}
	return &URIRegex{
		patterns:      ps,
		failOnNoMatch: cfg.FailOnNoMatch,
		warnOnNoMatch: cfg.WarnOnNoMatch,
		noMatchLevel:  cfg.NoMatchLevel,
		rand:          o.rand,
		logger:        o.logger,
	}, nil
}

// Hash implements Function.
func (r *URIRegex) Hash(u *url.URL) (int32, error) {
	s := uriString(u)
	tokens, ok := r.match(s)
	if ok {
		return r.md5.Sum32(tokens...), nil
	}
	if r.failOnNoMatch {
		return 0, fmt.Errorf("%w: %q", ErrNoRegexMatch, s)
	}
	if r.warnOnNoMatch {
		logging.Log(r.logger, r.noMatchLevel,
			"no regex matched request uri; falling back to random hash",
			"uri", s,
		)
	}
	return r.rand.Int32(), nil
}

// HashLong implements Function.
// It always returns ErrUnsupported.
func (r *URIRegex) HashLong(*url.URL) (int64, error) {
	return 0, fmt.Errorf("uri regex: 64-bit hash: %w", ErrUnsupported)
}

// Patterns returns source of compiled patterns in order.
func (r *URIRegex) Patterns() []string {
	ret := make([]string, len(r.patterns))
	for i, re := range r.patterns {
		ret[i] = re.String()
	}
	return ret
}

// Tokens returns capture groups of the first matching pattern.
func (r *URIRegex) Tokens(u *url.URL) ([]string, bool) {
	return r.match(uriString(u))
}

func (r *URIRegex) match(s string) ([]string, bool) {
	for _, re := range r.patterns {
		if re.NumSubexp() == 0 {
			continue
		}
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		return m[1:], true
	}
	return nil, false
}

func uriString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
