package people_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/tax-engine/logging"
	"github.com/warp/tax-engine/people"
	"github.com/warp/tax-engine/tax"
)

// =============================================================================
// MEMORY DIRECTORY TESTS
// =============================================================================

func TestMemory_SaveAssignsIDs(t *testing.T) {
	ctx := context.Background()
	m := people.NewMemory()

	a, err := m.Save(ctx, tax.FullTimeEmployee{Identity: tax.Identity{Name: "Asha"}, AnnualSalary: tax.MustParseDecimal("1")})
	require.NoError(t, err)
	b, err := m.Save(ctx, tax.Contractor{Identity: tax.Identity{Name: "Ben"}, HourlyRate: tax.MustParseDecimal("1"), HoursWorked: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.Identification().ID)
	assert.Equal(t, int64(2), b.Identification().ID)

	got, err := m.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, tax.CategoryContractor, got.Category())

	all, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Asha", all[0].Identification().Name)
}

func TestMemory_SeedKeepsExplicitIDs(t *testing.T) {
	m := people.NewMemory(tax.SelfEmployed{Identity: tax.Identity{ID: 10}, AnnualTurnover: tax.MustParseDecimal("5")})

	p, err := m.Save(context.Background(), tax.BusinessOwner{AnnualTurnover: tax.MustParseDecimal("5")})
	require.NoError(t, err)

	assert.Equal(t, int64(11), p.Identification().ID)
}

func TestMemory_GetMissing(t *testing.T) {
	_, err := people.NewMemory().Get(context.Background(), 42)

	require.ErrorIs(t, err, people.ErrPersonNotFound)
	assert.True(t, people.IsNotFound(err))
	assert.Contains(t, err.Error(), "42")
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m := people.NewMemory(tax.FullTimeEmployee{AnnualSalary: tax.MustParseDecimal("1")})

	require.NoError(t, m.Delete(ctx, 1))
	_, err := m.Get(ctx, 1)
	assert.ErrorIs(t, err, people.ErrPersonNotFound)

	assert.ErrorIs(t, m.Delete(ctx, 1), people.ErrPersonNotFound)
}

func TestMemory_SaveRejectsInvalid(t *testing.T) {
	_, err := people.NewMemory().Save(context.Background(), tax.FullTimeEmployee{AnnualSalary: tax.MustParseDecimal("-1")})

	assert.ErrorIs(t, err, tax.ErrInvalidPerson)
}

// =============================================================================
// REMOTE CLIENT TESTS
// =============================================================================

func TestClient_ResolvesAndCaches(t *testing.T) {
	var calls atomic.Int32
	var gotCorrelation string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotCorrelation = r.Header.Get(logging.CorrelationIDHeader)
		assert.Equal(t, "/people/7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"personType":"EMPLOYEE_FULL_TIME","id":7,"name":"Asha","annualSalary":1000000}`))
	}))
	defer srv.Close()

	c := people.NewClient(srv.URL+"/", people.ClientOptions{CacheTTL: time.Minute})
	ctx := logging.WithCorrelationID(context.Background(), "corr-1")

	p, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.Identification().ID)
	assert.Equal(t, "corr-1", gotCorrelation)

	_, err = c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second lookup should hit the cache")
}

func TestClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := people.NewClient(srv.URL, people.ClientOptions{}).Get(context.Background(), 3)

	require.ErrorIs(t, err, people.ErrPersonNotFound)
}

func TestClient_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := people.NewClient(srv.URL, people.ClientOptions{CacheTTL: -1}).Get(context.Background(), 3)

	require.Error(t, err)
	assert.False(t, people.IsNotFound(err))
	assert.Contains(t, err.Error(), "503")
}

func TestClient_BadRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"personType":"ASTRONAUT"}`))
	}))
	defer srv.Close()

	_, err := people.NewClient(srv.URL, people.ClientOptions{}).Get(context.Background(), 1)

	assert.ErrorIs(t, err, tax.ErrUnknownPersonVariant)
}
