package repo

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rogerio-castellano/inventory-app/internal/models"
	"go.etcd.io/bbolt"
)

var boltBucket = []byte("products")

// BoltProductRepository persists products in a local bbolt file. Keys are the
// big-endian id, so a cursor walks products in creation order.
type BoltProductRepository struct {
	db   *bbolt.DB
	path string
}

func NewBoltProductRepository(path string, mode os.FileMode) (*BoltProductRepository, error) {
	db, err := bbolt.Open(path, mode, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltProductRepository{db: db, path: path}, nil
}

func (r *BoltProductRepository) Close() error {
	return r.db.Close()
}

func boltKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

func (r *BoltProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).ForEach(func(k, v []byte) error {
			var p models.Product
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("failed to decode product %d: %w", binary.BigEndian.Uint64(k), err)
			}
			products = append(products, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *BoltProductRepository) Create(_ context.Context, p models.Product) (models.Product, error) {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		p.ID = models.IntID(int64(seq))
		p.CreatedAt = now()
		p.UpdatedAt = p.CreatedAt

		buf, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put(boltKey(seq), buf)
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (r *BoltProductRepository) Update(_ context.Context, id models.ID, patch models.ProductPatch) (models.Product, error) {
	n, ok := id.Int()
	if !ok {
		return models.Product{}, ErrProductNotFound
	}

	var p models.Product
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltBucket)
		v := b.Get(boltKey(uint64(n)))
		if v == nil {
			return ErrProductNotFound
		}
		if err := json.Unmarshal(v, &p); err != nil {
			return fmt.Errorf("failed to decode product %s: %w", id, err)
		}

		p = patch.Apply(p, now())
		buf, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put(boltKey(uint64(n)), buf)
	})
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (r *BoltProductRepository) Delete(_ context.Context, id models.ID) error {
	n, ok := id.Int()
	if !ok {
		return nil
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(boltKey(uint64(n)))
	})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

func (r *BoltProductRepository) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	products, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByKeyword(products, keyword), nil
}

func (r *BoltProductRepository) Health(_ context.Context) HealthStatus {
	err := r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(boltBucket) == nil {
			return fmt.Errorf("bucket %s missing", boltBucket)
		}
		return nil
	})
	return healthStatus("bbolt", r.path, err)
}
