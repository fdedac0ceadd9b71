package product

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

var (
	ErrNotFound       = domain.NotFound("product not found")
	ErrPermalinkTaken = domain.Rule("permalink already exists, pick a new one")
	ErrTitleRequired  = domain.Invalid("product title is required")
	ErrStoreNotFound  = domain.NotFound("store not found")
	ErrNegativeStock  = domain.Invalid("product stock must not be negative")
)

// RelatedLimit caps the related products shown next to a product.
const RelatedLimit = 4

type productRepo interface {
	List(ctx context.Context, f productrepo.ListFilter) ([]domain.Product, int, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDOrPermalink(ctx context.Context, ref string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
	SetOptions(ctx context.Context, id string, options map[string]interface{}) error
	PermalinkTaken(ctx context.Context, permalink, excludeID string) (bool, error)
}

type storeLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Store, error)
}

type productIndex interface {
	IndexProducts(products []domain.Product) error
	UpsertProduct(p domain.Product) error
	DeleteProduct(id string) error
	SearchProducts(term string, limit int) ([]string, error)
}

// Service manages the product catalog and keeps the search index in step with it.
type Service struct {
	repo    productRepo
	stores  storeLookup
	index   productIndex
	perPage int
	logger  *log.Logger
}

func New(repo productRepo, stores storeLookup, index productIndex, perPage int, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if perPage <= 0 {
		perPage = 6
	}
	return &Service{repo: repo, stores: stores, index: index, perPage: perPage, logger: logger}
}

// Page is one page of a product listing.
type Page struct {
	Items   []domain.Product `json:"results"`
	Total   int              `json:"totalProductCount"`
	PageNum int              `json:"pageNum"`
	PerPage int              `json:"productsPerPage"`
}

// Input is an admin product form.
type Input struct {
	ID             string          `json:"productId,omitempty"`
	StoreID        string          `json:"productStore"`
	Permalink      string          `json:"productPermalink"`
	Title          string          `json:"productTitle"`
	Description    string          `json:"productDescription"`
	Price          string          `json:"productPrice"`
	Published      bool            `json:"productPublished"`
	Tags           string          `json:"productTags"`
	Options        json.RawMessage `json:"productOptions"`
	CommentEnabled bool            `json:"productComment"`
	Stock          *int            `json:"productStock"`
	StockDisabled  bool            `json:"productStockDisable"`
	Subscription   bool            `json:"productSubscription"`
	Image          string          `json:"productImage"`
}

// Reindex rebuilds the search index from every stored product.
func (s *Service) Reindex(ctx context.Context) error {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	return s.index.IndexProducts(all)
}

// AdminList pages through every product, newest first.
func (s *Service) AdminList(ctx context.Context, pageNum int) (Page, error) {
	return s.page(ctx, productrepo.ListFilter{}, pageNum)
}

// List pages through published products.
func (s *Service) List(ctx context.Context, pageNum int) (Page, error) {
	return s.page(ctx, productrepo.ListFilter{PublishedOnly: true}, pageNum)
}

// Search pages through published products matching term.
func (s *Service) Search(ctx context.Context, term string, pageNum int) (Page, error) {
	ids, err := s.index.SearchProducts(term, 0)
	if err != nil {
		return Page{}, err
	}
	return s.page(ctx, productrepo.ListFilter{IDs: ids, PublishedOnly: true}, pageNum)
}

// Filter returns every product matching term, published or not, for the admin list.
func (s *Service) Filter(ctx context.Context, term string) ([]domain.Product, error) {
	ids, err := s.index.SearchProducts(term, 0)
	if err != nil {
		return nil, err
	}
	items, _, err := s.repo.List(ctx, productrepo.ListFilter{IDs: ids})
	return items, err
}

func (s *Service) page(ctx context.Context, f productrepo.ListFilter, pageNum int) (Page, error) {
	if pageNum < 1 {
		pageNum = 1
	}
	f.Limit = s.perPage
	f.Offset = (pageNum - 1) * s.perPage
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total, PageNum: pageNum, PerPage: s.perPage}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

// Show resolves a storefront product by id or permalink. Unpublished products are not found.
func (s *Service) Show(ctx context.Context, ref string) (*domain.Product, error) {
	p, err := s.repo.GetByIDOrPermalink(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.Published {
		return nil, ErrNotFound
	}
	return p, nil
}

// Related finds published products sharing tags or title words with p.
func (s *Service) Related(ctx context.Context, p domain.Product) ([]domain.Product, error) {
	var words []string
	for _, w := range strings.Split(p.Tags, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	words = append(words, strings.Fields(p.Title)...)
	if len(words) == 0 {
		return []domain.Product{}, nil
	}

	ids, err := s.index.SearchProducts(strings.Join(words, " "), 0)
	if err != nil {
		return nil, err
	}
	others := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != p.ID {
			others = append(others, id)
		}
	}
	items, _, err := s.repo.List(ctx, productrepo.ListFilter{IDs: others, PublishedOnly: true, Limit: RelatedLimit})
	return items, err
}

func (s *Service) Insert(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := s.build(ctx, in, "")
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrPermalinkTaken
		}
		return nil, domain.Persistence("error inserting product", err)
	}
	s.reindexOne(*created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, in Input) (*domain.Product, error) {
	existing, err := s.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	p, err := s.build(ctx, in, existing.ID)
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	if p.Image == "" {
		p.Image = existing.Image
	}
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, domain.ErrAlreadyExists):
			return nil, ErrPermalinkTaken
		}
		return nil, domain.Persistence("failed to save, please try again", err)
	}
	s.reindexOne(*updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return domain.Persistence("error deleting product", err)
	}
	if err := s.index.DeleteProduct(id); err != nil {
		s.logger.Printf("product service: unindex id=%s error=%v", id, err)
	}
	return nil
}

func (s *Service) SetPublished(ctx context.Context, id string, published bool) error {
	if err := s.repo.SetPublished(ctx, id, published); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return domain.Persistence("published state not updated", err)
	}
	return nil
}

// RemoveOption deletes one named option from a product.
func (s *Service) RemoveOption(ctx context.Context, id, name string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	opts := make(map[string]interface{}, len(p.Options))
	for k, v := range p.Options {
		if k != name {
			opts[k] = v
		}
	}
	if err := s.repo.SetOptions(ctx, id, opts); err != nil {
		return domain.Persistence("error removing option, please try again", err)
	}
	return nil
}

// ValidatePermalink fails when another product already uses permalink.
func (s *Service) ValidatePermalink(ctx context.Context, permalink, excludeID string) error {
	taken, err := s.repo.PermalinkTaken(ctx, strings.TrimSpace(permalink), strings.TrimSpace(excludeID))
	if err != nil {
		return err
	}
	if taken {
		return ErrPermalinkTaken
	}
	return nil
}

func (s *Service) build(ctx context.Context, in Input, excludeID string) (domain.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Product{}, ErrTitleRequired
	}
	price, err := domain.ParsePrice(in.Price)
	if err != nil {
		return domain.Product{}, err
	}
	if in.Stock != nil && *in.Stock < 0 {
		return domain.Product{}, ErrNegativeStock
	}
	storeID := strings.TrimSpace(in.StoreID)
	if storeID != "" {
		if _, err := s.stores.GetByID(ctx, storeID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Product{}, ErrStoreNotFound
			}
			return domain.Product{}, err
		}
	}
	permalink := strings.TrimSpace(in.Permalink)
	if permalink != "" {
		if err := s.ValidatePermalink(ctx, permalink, excludeID); err != nil {
			return domain.Product{}, err
		}
	}
	return domain.Product{
		StoreID:        storeID,
		Permalink:      permalink,
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		Price:          price,
		Published:      in.Published,
		Tags:           strings.TrimSpace(in.Tags),
		Options:        domain.ParseOptions(in.Options),
		CommentEnabled: in.CommentEnabled,
		Stock:          in.Stock,
		StockDisabled:  in.StockDisabled,
		Subscription:   in.Subscription,
		Image:          strings.TrimSpace(in.Image),
	}, nil
}

func (s *Service) reindexOne(p domain.Product) {
	if err := s.index.UpsertProduct(p); err != nil {
		s.logger.Printf("product service: index id=%s error=%v", p.ID, err)
	}
}
