package hashfunc

import (
	"fmt"
	"net/url"

	"github.com/gobwas/loadring/logging"
)

// Request hash method names.
const (
	MethodRandom   = "random"
	MethodURIRegex = "uriRegex"
)

// Config keys understood by New.
const (
	KeyRegexes       = "regexes"
	KeyFailOnNoMatch = "failOnNoMatch"
	KeyWarnOnNoMatch = "warnOnNoMatch"
	KeyNoMatchLevel  = "noMatchLogLevel"
	KeySeed          = "seed"
)

// New builds request hash function by its method name and configuration map.
// Empty method means MethodRandom.
//
// MethodURIRegex understands KeyRegexes (list of strings, required),
// KeyFailOnNoMatch, KeyWarnOnNoMatch (booleans) and KeyNoMatchLevel (string).
// MethodRandom understands optional KeySeed (integer).
func New(method string, cfg map[string]any, opts ...Option) (Function[*url.URL], error) {
	switch method {
	case "", MethodRandom:
		if v, has := cfg[KeySeed]; has {
			seed, err := configInt(KeySeed, v)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithSeed(seed))
		}
		return NewRandom[*url.URL](opts...), nil

	case MethodURIRegex:
		rc, err := parseURIRegexConfig(cfg)
		if err != nil {
			return nil, err
		}
		return NewURIRegex(rc, opts...)

	default:
		return nil, fmt.Errorf("%w: unknown hash method %q", ErrInvalidConfig, method)
	}
}

func parseURIRegexConfig(cfg map[string]any) (rc URIRegexConfig, err error) {
	v, has := cfg[KeyRegexes]
	if !has {
		return rc, fmt.Errorf("%w: %q is required", ErrInvalidConfig, KeyRegexes)
	}
	switch xs := v.(type) {
	case []string:
		rc.Regexes = append(rc.Regexes, xs...)
	case []any:
		for i, x := range xs {
			s, ok := x.(string)
			if !ok {
				return rc, fmt.Errorf(
					"%w: %q #%d: want string; got %T",
					ErrInvalidConfig, KeyRegexes, i, x,
				)
			}
			rc.Regexes = append(rc.Regexes, s)
		}
	default:
		return rc, fmt.Errorf(
			"%w: %q: want list of strings; got %T",
			ErrInvalidConfig, KeyRegexes, v,
		)
	}
	if len(rc.Regexes) == 0 {
		return rc, fmt.Errorf("%w: %q is empty", ErrInvalidConfig, KeyRegexes)
	}
	if rc.FailOnNoMatch, err = configBool(cfg, KeyFailOnNoMatch); err != nil {
		return rc, err
	}
	if rc.WarnOnNoMatch, err = configBool(cfg, KeyWarnOnNoMatch); err != nil {
		return rc, err
	}
	if v, has := cfg[KeyNoMatchLevel]; has {
		s, ok := v.(string)
		if !ok {
			return rc, fmt.Errorf("%w: %q: want string; got %T", ErrInvalidConfig, KeyNoMatchLevel, v)
		}
		rc.NoMatchLevel = logging.Level(s)
	}
	return rc, nil
}

func configBool(cfg map[string]any, key string) (bool, error) {
	v, has := cfg[key]
	if !has {
		return false, nil
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch x {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: %q: want boolean; got %v", ErrInvalidConfig, key, v)
}

func configInt(key string, v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case uint64:
		return int64(x), nil
	case float64:
		if x == float64(int64(x)) {
			return int64(x), nil
		}
	}
	return 0, fmt.Errorf("%w: %q: want integer; got %v", ErrInvalidConfig, key, v)
}
