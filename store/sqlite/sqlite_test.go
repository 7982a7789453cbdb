package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/tax-engine/people"
	"github.com/warp/tax-engine/store/sqlite"
	"github.com/warp/tax-engine/tax"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndGetEveryCategory(t *testing.T) {
	// GIVEN: one person of each category
	// WHEN: saved without ids and read back
	// THEN: ids are assigned and every field survives exactly
	store := newTestStore(t)
	ctx := context.Background()

	in := []tax.Person{
		tax.FullTimeEmployee{Identity: tax.Identity{Name: "Asha", Email: "asha@example.com"}, AnnualSalary: tax.MustParseDecimal("1000000.10")},
		tax.Contractor{Identity: tax.Identity{Name: "Ben"}, HourlyRate: tax.MustParseDecimal("1500.55"), HoursWorked: 160},
		tax.SelfEmployed{Identity: tax.Identity{Name: "Dev"}, AnnualTurnover: tax.MustParseDecimal("1000000"), Profession: "Doctor"},
		tax.BusinessOwner{Identity: tax.Identity{Name: "Ravi"}, AnnualTurnover: tax.MustParseDecimal("5000000"), BusinessType: "Retail"},
	}

	for i, p := range in {
		saved, err := store.Save(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), saved.Identification().ID)

		got, err := store.Get(ctx, saved.Identification().ID)
		require.NoError(t, err)
		assert.Equal(t, p.Category(), got.Category())
		assert.True(t, p.GrossIncome().Equal(got.GrossIncome()), "gross income for %s", p.Category())
		assert.Equal(t, saved.Identification(), got.Identification())
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestStore_SaveWithIDUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Save(ctx, tax.FullTimeEmployee{Identity: tax.Identity{Name: "Asha"}, AnnualSalary: tax.MustParseDecimal("100")})
	require.NoError(t, err)

	updated := tax.SelfEmployed{Identity: first.Identification(), AnnualTurnover: tax.MustParseDecimal("200"), Profession: "Architect"}
	_, err = store.Save(ctx, updated)
	require.NoError(t, err)

	got, err := store.Get(ctx, first.Identification().ID)
	require.NoError(t, err)
	assert.Equal(t, tax.CategorySelfEmployed, got.Category())
	assert.Equal(t, "Architect", got.(tax.SelfEmployed).Profession)
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), 99)

	assert.ErrorIs(t, err, people.ErrPersonNotFound)
}

func TestStore_RejectsInvalidPerson(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(context.Background(), tax.Contractor{HourlyRate: tax.MustParseDecimal("10"), HoursWorked: -1})

	assert.ErrorIs(t, err, tax.ErrInvalidPerson)
}

func TestStore_Delete(t *testing.T) {
	// GIVEN: two stored people
	// WHEN: one is deleted
	// THEN: only that one is gone; deleting it again reports not found
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Save(ctx, tax.FullTimeEmployee{AnnualSalary: tax.MustParseDecimal("1")})
	require.NoError(t, err)
	b, err := store.Save(ctx, tax.FullTimeEmployee{AnnualSalary: tax.MustParseDecimal("2")})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, a.Identification().ID))
	_, err = store.Get(ctx, a.Identification().ID)
	assert.ErrorIs(t, err, people.ErrPersonNotFound)

	_, err = store.Get(ctx, b.Identification().ID)
	assert.NoError(t, err)

	err = store.Delete(ctx, a.Identification().ID)
	assert.True(t, people.IsNotFound(err))
}
