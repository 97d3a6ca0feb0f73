package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-app/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const skipIntegrationTests = "INVENTORY_SKIP_INTEGRATION_TESTS"

// contractOptions describes where a backend is allowed to differ.
type contractOptions struct {
	newestFirst    bool      // GetAll orders by createdAt descending
	searchCategory bool      // Search also matches the category
	unknownID      models.ID // well-formed id that was never assigned
}

// useFakeClock makes every call to now one second later than the previous one.
func useFakeClock(t *testing.T) {
	t.Helper()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var (
		mu    sync.Mutex
		ticks int
	)
	orig := now
	now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}
	t.Cleanup(func() { now = orig })
}

func mustCreate(t *testing.T, r ProductRepository, name, category string, price float64, qty int) models.Product {
	t.Helper()
	p, err := r.Create(context.Background(), models.Product{Name: name, Category: category, Price: price, Quantity: qty})
	require.NoError(t, err)
	return p
}

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

// testProductRepositoryContract runs the behaviour every backend shares.
// newRepo must return an empty store.
func testProductRepositoryContract(t *testing.T, newRepo func(t *testing.T) ProductRepository, opts contractOptions) {
	ctx := context.Background()

	t.Run("Create assigns unique ids and timestamps", func(t *testing.T) {
		useFakeClock(t)
		r := newRepo(t)

		seen := map[models.ID]bool{}
		for _, name := range []string{"Laptop", "Mouse", "Keyboard"} {
			p := mustCreate(t, r, name, "Electronics", 10, 1)
			assert.NotEmpty(t, p.ID)
			assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
			seen[p.ID] = true
			assert.False(t, p.CreatedAt.IsZero())
			assert.True(t, p.CreatedAt.Equal(p.UpdatedAt))
		}

		p := mustCreate(t, r, "USB Cable", "Accessories", 200, 50)
		assert.Equal(t, "USB Cable", p.Name)
		assert.Equal(t, "Accessories", p.Category)
		assert.Equal(t, 200.0, p.Price)
		assert.Equal(t, 50, p.Quantity)
	})

	t.Run("Update with unknown id is not found", func(t *testing.T) {
		r := newRepo(t)
		mustCreate(t, r, "Laptop", "Electronics", 10, 1)

		_, err := r.Update(ctx, opts.unknownID, models.ProductPatch{Name: ptr("x")})
		assert.ErrorIs(t, err, ErrProductNotFound)

		_, err = r.Update(ctx, "not-an-id", models.ProductPatch{Name: ptr("x")})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Partial update keeps other fields", func(t *testing.T) {
		useFakeClock(t)
		r := newRepo(t)
		created := mustCreate(t, r, "Laptop", "Electronics", 50000, 3)

		updated, err := r.Update(ctx, created.ID, models.ProductPatch{Price: ptr(45000.0)})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		assert.Equal(t, "Laptop", updated.Name)
		assert.Equal(t, "Electronics", updated.Category)
		assert.Equal(t, 45000.0, updated.Price)
		assert.Equal(t, 3, updated.Quantity)

		updated, err = r.Update(ctx, created.ID, models.ProductPatch{Quantity: ptr(0), Category: ptr("")})
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Quantity)
		assert.Equal(t, "", updated.Category)
		assert.Equal(t, 45000.0, updated.Price)

		all, err := r.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, updated.ID, all[0].ID)
		assert.Equal(t, 0, all[0].Quantity)
		assert.Equal(t, 45000.0, all[0].Price)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		r := newRepo(t)
		keep := mustCreate(t, r, "Mouse", "Electronics", 500, 15)
		gone := mustCreate(t, r, "Monitor", "Electronics", 15000, 2)

		require.NoError(t, r.Delete(ctx, gone.ID))
		require.NoError(t, r.Delete(ctx, gone.ID))
		require.NoError(t, r.Delete(ctx, "not-an-id"))

		all, err := r.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep.ID, all[0].ID)
	})

	t.Run("Search is case-insensitive substring", func(t *testing.T) {
		r := newRepo(t)
		mustCreate(t, r, "Laptop", "Electronics", 50000, 3)
		mustCreate(t, r, "Mouse", "Electronics", 500, 15)
		mustCreate(t, r, "Cable", "Accessories", 200, 50)

		for _, kw := range []string{"lap", "LAP", "apto"} {
			found, err := r.Search(ctx, kw)
			require.NoError(t, err)
			assert.Equal(t, []string{"Laptop"}, names(found), "keyword %q", kw)
		}

		found, err := r.Search(ctx, "access")
		require.NoError(t, err)
		if opts.searchCategory {
			assert.Equal(t, []string{"Cable"}, names(found))
		} else {
			assert.Empty(t, found)
		}

		found, err = r.Search(ctx, "%")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("List order", func(t *testing.T) {
		useFakeClock(t)
		r := newRepo(t)
		mustCreate(t, r, "first", "", 1, 1)
		mustCreate(t, r, "second", "", 1, 1)
		mustCreate(t, r, "third", "", 1, 1)

		all, err := r.GetAll(ctx)
		require.NoError(t, err)
		if opts.newestFirst {
			assert.Equal(t, []string{"third", "second", "first"}, names(all))
		} else {
			assert.Equal(t, []string{"first", "second", "third"}, names(all))
		}

		found, err := r.Search(ctx, "i")
		require.NoError(t, err)
		if opts.newestFirst {
			assert.Equal(t, []string{"third", "first"}, names(found))
		} else {
			assert.Equal(t, []string{"first", "third"}, names(found))
		}
	})

	t.Run("Concurrent creates never share an id", func(t *testing.T) {
		r := newRepo(t)
		const n = 25

		var wg sync.WaitGroup
		ids := make(chan models.ID, n)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p, err := r.Create(ctx, models.Product{Name: "Widget", Price: 1, Quantity: 1})
				if assert.NoError(t, err) {
					ids <- p.ID
				}
			}()
		}
		wg.Wait()
		close(ids)

		seen := map[models.ID]bool{}
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
	})

	t.Run("Concurrent partial updates keep each other's fields", func(t *testing.T) {
		r := newRepo(t)
		created := mustCreate(t, r, "Laptop", "Electronics", 1, 1)
		const rounds = 50

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 1; i <= rounds; i++ {
				_, err := r.Update(ctx, created.ID, models.ProductPatch{Quantity: ptr(i)})
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 1; i <= rounds; i++ {
				_, err := r.Update(ctx, created.ID, models.ProductPatch{Price: ptr(float64(i))})
				assert.NoError(t, err)
			}
		}()
		wg.Wait()

		all, err := r.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, rounds, all[0].Quantity)
		assert.Equal(t, float64(rounds), all[0].Price)
		assert.Equal(t, "Laptop", all[0].Name)
	})

	t.Run("Update racing a delete never brings the product back", func(t *testing.T) {
		r := newRepo(t)
		const n = 20

		ids := make([]models.ID, n)
		for i := range ids {
			ids[i] = mustCreate(t, r, "Widget", "", 1, 1).ID
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for range 5 {
					_, err := r.Update(ctx, id, models.ProductPatch{Quantity: ptr(7)})
					if err != nil {
						assert.ErrorIs(t, err, ErrProductNotFound)
					}
				}
			}()
			go func() {
				defer wg.Done()
				assert.NoError(t, r.Delete(ctx, id))
			}()
		}
		wg.Wait()

		all, err := r.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	if opts.newestFirst {
		t.Run("Same instant lists higher id first", func(t *testing.T) {
			frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			orig := now
			now = func() time.Time { return frozen }
			t.Cleanup(func() { now = orig })

			r := newRepo(t)
			for _, name := range []string{"a", "b", "c", "d"} {
				mustCreate(t, r, name, "", 1, 1)
			}

			all, err := r.GetAll(ctx)
			require.NoError(t, err)

			want := append([]models.Product(nil), all...)
			sortNewestFirst(want)
			for i := range want {
				assert.Equal(t, want[i].ID, all[i].ID, "position %d", i)
			}
		})
	}

	t.Run("Health reports ok", func(t *testing.T) {
		r := newRepo(t)
		h := r.Health(ctx)
		assert.True(t, h.OK(), h.Error)
		assert.NotEmpty(t, h.Database)
		assert.NotEmpty(t, h.Endpoint)
	})
}
