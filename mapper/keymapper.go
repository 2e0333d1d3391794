package mapper

import (
	"fmt"
	"net/url"
)

// KeyMapper maps resource keys of a service to hosts.
type KeyMapper[K comparable] struct {
	uris *URIMapper[K]
}

// NewKeyMapper creates KeyMapper which maps keys with given URIMapper.
func NewKeyMapper[K comparable](m *URIMapper[K]) *KeyMapper[K] {
	return &KeyMapper[K]{
		uris: m,
	}
}

// MapKeys maps keys of the service to hosts. Request uri of each key is
// built by appending the key to the service uri path.
func (m *KeyMapper[K]) MapKeys(serviceURI *url.URL, keys []K) (*Result[K], error) {
	if serviceURI == nil {
		return nil, fmt.Errorf("%w: nil service uri", ErrNoServiceName)
	}
	pairs := make([]URIKeyPair[K], len(keys))
	for i, key := range keys {
		pairs[i] = NewURIKeyPair(key, KeyURI(serviceURI, key))
	}
	return m.uris.MapURIs(pairs)
}

// KeyURI returns uri of the resource with given key.
func KeyURI[K any](serviceURI *url.URL, key K) *url.URL {
	return serviceURI.JoinPath(fmt.Sprint(key))
}
