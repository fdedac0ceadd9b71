package search

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"storefront/internal/domain"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// DefaultLimit caps result sets when callers pass a non-positive limit.
const DefaultLimit = 1000

type productDoc struct {
	Title       string `json:"title"`
	Tags        string `json:"tags"`
	Description string `json:"description"`
}

type storeDoc struct {
	Title       string `json:"title"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// Index is the full-text index over products and stores. It is built once at startup,
// kept current by catalog writes, and closed on shutdown.
type Index struct {
	mu       sync.RWMutex
	products bleve.Index
	stores   bleve.Index
	logger   *log.Logger
}

func New(logger *log.Logger) (*Index, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	products, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("create product index: %w", err)
	}
	stores, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		_ = products.Close()
		return nil, fmt.Errorf("create store index: %w", err)
	}
	return &Index{products: products, stores: stores, logger: logger}, nil
}

func newMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = "standard"
	return m
}

// IndexProducts replaces the product index contents with products.
func (i *Index) IndexProducts(products []domain.Product) error {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return err
	}
	batch := idx.NewBatch()
	for _, p := range products {
		if err := batch.Index(p.ID, toProductDoc(p)); err != nil {
			_ = idx.Close()
			return err
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return err
	}

	i.mu.Lock()
	old := i.products
	i.products = idx
	i.mu.Unlock()
	i.logger.Printf("search: indexed products count=%d", len(products))
	return old.Close()
}

// IndexStores replaces the store index contents with stores.
func (i *Index) IndexStores(stores []domain.Store) error {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return err
	}
	batch := idx.NewBatch()
	for _, s := range stores {
		if err := batch.Index(s.ID, toStoreDoc(s)); err != nil {
			_ = idx.Close()
			return err
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return err
	}

	i.mu.Lock()
	old := i.stores
	i.stores = idx
	i.mu.Unlock()
	i.logger.Printf("search: indexed stores count=%d", len(stores))
	return old.Close()
}

func (i *Index) UpsertProduct(p domain.Product) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.products.Index(p.ID, toProductDoc(p))
}

func (i *Index) DeleteProduct(id string) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.products.Delete(id)
}

func (i *Index) UpsertStore(s domain.Store) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.stores.Index(s.ID, toStoreDoc(s))
}

func (i *Index) DeleteStore(id string) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.stores.Delete(id)
}

// SearchProducts returns matching product ids, best match first.
func (i *Index) SearchProducts(term string, limit int) ([]string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return query(i.products, term, limit)
}

// SearchStores returns matching store ids, best match first.
func (i *Index) SearchStores(term string, limit int) ([]string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return query(i.stores, term, limit)
}

func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return errors.Join(i.products.Close(), i.stores.Close())
}

func query(idx bleve.Index, term string, limit int) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := bleve.NewMatchQuery(term)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := idx.Search(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func toProductDoc(p domain.Product) productDoc {
	return productDoc{Title: p.Title, Tags: p.Tags, Description: p.Description}
}

func toStoreDoc(s domain.Store) storeDoc {
	return storeDoc{Title: s.Title, Address: s.Address, Description: s.Description}
}
