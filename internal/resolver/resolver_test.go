package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	domains    map[string]string
	subdomains map[string]string
	err        error
	calls      int
}

func (f *fakeLookup) StoreIDByCustomDomain(ctx context.Context, domain string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.domains[domain], nil
}

func (f *fakeLookup) StoreIDBySubdomain(ctx context.Context, subdomain string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.subdomains[subdomain], nil
}

func newFake() *fakeLookup {
	return &fakeLookup{
		domains: map[string]string{
			"shop.acme.com": "store-custom",
			"acme.io":       "store-apex",
		},
		subdomains: map[string]string{
			"acme": "store-acme",
			"shop": "store-shop",
			"www":  "store-www",
		},
	}
}

func TestCandidateSubdomain(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"acme.platform.com", "acme"},
		{"acme.platform.com:443", "acme"},
		{"platform.com", ""},
		{"www.platform.com", ""},
		{"acme.localhost", "acme"},
		{"acme.localhost:3000", "acme"},
		{"localhost", ""},
		{"localhost:3000", ""},
		{"www.localhost", ""},
		{"a.b.platform.com", "a"},
		{"a.example.com", "a"},
		{"store1.shop.example.com", "store1"},
		{"", ""},
		{"[::1]:8080", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CandidateSubdomain(tc.host), "host %q", tc.host)
	}
}

func TestStripPort(t *testing.T) {
	assert.Equal(t, "acme.com", StripPort("acme.com:8080"))
	assert.Equal(t, "acme.com", StripPort("acme.com"))
	assert.Equal(t, "::1", StripPort("[::1]:443"))
	assert.Equal(t, "::1", StripPort("[::1]"))
}

func TestResolveCustomDomainWins(t *testing.T) {
	lookup := newFake()
	lookup.domains["shop.platform.com"] = "store-custom-2"
	r := New(lookup, nil)

	id, err := r.Resolve(context.Background(), "shop.platform.com")
	require.NoError(t, err)
	assert.Equal(t, "store-custom-2", id)
	assert.Equal(t, 1, lookup.calls, "subdomain lookup must be skipped after a domain match")
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		host string
		want string
	}{
		{"custom domain", "shop.acme.com", "store-custom"},
		{"custom domain with port", "shop.acme.com:8443", "store-custom"},
		{"two-label custom domain", "acme.io", "store-apex"},
		{"subdomain", "acme.platform.com", "store-acme"},
		{"subdomain with port", "acme.platform.com:3000", "store-acme"},
		{"local subdomain", "acme.localhost:3000", "store-acme"},
		{"apex never resolves", "platform.com", ""},
		{"www never resolves", "www.platform.com", ""},
		{"plain localhost", "localhost:3000", ""},
		{"unknown subdomain", "ghost.platform.com", ""},
		{"case-sensitive subdomain", "ACME.platform.com", ""},
		{"empty host", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(newFake(), nil)
			id, err := r.Resolve(context.Background(), tc.host)
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}

func TestResolveSingleLetterSubdomain(t *testing.T) {
	lookup := newFake()
	r := New(lookup, nil)

	id, err := r.Resolve(context.Background(), "a.example.com")
	require.NoError(t, err)
	assert.Empty(t, id)

	lookup.subdomains["a"] = "store-a"
	id, err = r.Resolve(context.Background(), "a.example.com")
	require.NoError(t, err)
	assert.Equal(t, "store-a", id, "three labels make the first one a candidate")
}

func TestResolveAtMostTwoLookups(t *testing.T) {
	lookup := newFake()
	r := New(lookup, nil)
	_, err := r.Resolve(context.Background(), "ghost.platform.com")
	require.NoError(t, err)
	assert.Equal(t, 2, lookup.calls)
}

func TestResolveIsIdempotent(t *testing.T) {
	r := New(newFake(), nil)
	first, err := r.Resolve(context.Background(), "acme.platform.com")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "acme.platform.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveEmptyHostSkipsLookups(t *testing.T) {
	lookup := newFake()
	_, err := New(lookup, nil).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, lookup.calls)
}

func TestResolvePropagatesLookupErrors(t *testing.T) {
	lookup := newFake()
	lookup.err = errors.New("db down")
	_, err := New(lookup, nil).Resolve(context.Background(), "acme.platform.com")
	assert.ErrorIs(t, err, lookup.err)
}
