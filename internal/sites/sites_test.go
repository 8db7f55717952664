package sites_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blakecrosley/941analytics/internal/sites"
	"github.com/blakecrosley/941analytics/internal/testsupport"
)

func TestBaseDomainForHost(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"blog.staging.example.com", "example.com"},
		{"EXAMPLE.COM", "example.com"},
		{" example.com ", "example.com"},
		{"example.co.uk", "example.co.uk"},
		{"www.example.co.uk", "example.co.uk"},
		{"shop.example.com.au", "example.com.au"},
		{"localhost", "localhost"},
		{"app.localhost", "localhost"},
		{"single", "single"},
	}

	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			assert.Equal(t, tc.want, sites.BaseDomainForHost(tc.host))
		})
	}
}

func TestSiteLookup(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	created, err := sites.Create(db, "www.example.com", "Example")
	require.NoError(t, err)
	assert.Equal(t, "example.com", created.Domain, "domain stored as base domain")

	t.Run("by exact domain", func(t *testing.T) {
		site, err := sites.GetByDomain(db, "example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, site.ID)
	})

	t.Run("by subdomain", func(t *testing.T) {
		site, err := sites.GetByDomain(db, "blog.example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, site.ID)
	})

	t.Run("unknown domain", func(t *testing.T) {
		_, err := sites.GetByDomain(db, "unknown.com")
		require.Error(t, err)

		var notFound *sites.SiteNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "unknown.com", notFound.Domain)
	})

	t.Run("by id", func(t *testing.T) {
		site, err := sites.GetByID(db, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "example.com", site.Domain)

		_, err = sites.GetByID(db, 9999)
		assert.Error(t, err)
	})

	t.Run("list", func(t *testing.T) {
		all, err := sites.List(db)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
