package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/discount"
	"storefront/internal/service/product"
	"storefront/internal/service/shipping"
	"storefront/internal/service/store"
	"storefront/internal/service/user"
	"storefront/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// memCarts keeps cart rows in memory; held quantities are summed across every row.
type memCarts struct {
	mu   sync.Mutex
	rows map[string]domain.Cart
}

func (m *memCarts) Get(_ context.Context, id string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

func (m *memCarts) Put(_ context.Context, id string, c domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id] = c.Clone()
	return nil
}

func (m *memCarts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memCarts) HeldQuantity(_ context.Context, productID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	held := 0
	for _, c := range m.rows {
		for _, item := range c {
			if item.ProductID == productID {
				held += item.Quantity
			}
		}
	}
	return held, nil
}

type catalogStub struct {
	products map[string]domain.Product
	inserted []product.Input
}

func (s *catalogStub) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *catalogStub) AdminList(_ context.Context, pageNum int) (product.Page, error) {
	return product.Page{Items: s.all(false), Total: len(s.products), PageNum: pageNum, PerPage: 6}, nil
}

func (s *catalogStub) List(_ context.Context, pageNum int) (product.Page, error) {
	items := s.all(true)
	return product.Page{Items: items, Total: len(items), PageNum: pageNum, PerPage: 6}, nil
}

func (s *catalogStub) Search(_ context.Context, term string, pageNum int) (product.Page, error) {
	var items []domain.Product
	for _, p := range s.all(true) {
		if strings.Contains(strings.ToLower(p.Title+" "+p.Tags), strings.ToLower(term)) {
			items = append(items, p)
		}
	}
	return product.Page{Items: items, Total: len(items), PageNum: pageNum, PerPage: 6}, nil
}

func (s *catalogStub) Filter(ctx context.Context, term string) ([]domain.Product, error) {
	page, err := s.Search(ctx, term, 1)
	return page.Items, err
}

func (s *catalogStub) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (s *catalogStub) Show(ctx context.Context, ref string) (*domain.Product, error) {
	p, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (s *catalogStub) Related(_ context.Context, p domain.Product) ([]domain.Product, error) {
	return nil, nil
}

func (s *catalogStub) Insert(_ context.Context, in product.Input) (*domain.Product, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, product.ErrTitleRequired
	}
	s.inserted = append(s.inserted, in)
	return &domain.Product{ID: "new-product", Title: in.Title}, nil
}

func (s *catalogStub) Update(ctx context.Context, in product.Input) (*domain.Product, error) {
	return s.Get(ctx, in.ID)
}

func (s *catalogStub) Delete(_ context.Context, id string) error {
	if _, ok := s.products[id]; !ok {
		return product.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *catalogStub) SetPublished(_ context.Context, id string, published bool) error {
	p, ok := s.products[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Published = published
	s.products[id] = p
	return nil
}

func (s *catalogStub) RemoveOption(context.Context, string, string) error { return nil }

func (s *catalogStub) ValidatePermalink(_ context.Context, permalink, excludeID string) error {
	for _, p := range s.products {
		if p.Permalink == permalink && p.ID != excludeID {
			return product.ErrPermalinkTaken
		}
	}
	return nil
}

func (s *catalogStub) all(publishedOnly bool) []domain.Product {
	out := []domain.Product{}
	for _, p := range s.products {
		if publishedOnly && !p.Published {
			continue
		}
		out = append(out, p)
	}
	return out
}

type storeStub struct{ stores map[string]domain.Store }

func (s *storeStub) GetByID(_ context.Context, id string) (*domain.Store, error) {
	st, ok := s.stores[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

func (s *storeStub) List(context.Context) ([]domain.Store, error) {
	out := []domain.Store{}
	for _, st := range s.stores {
		out = append(out, st)
	}
	return out, nil
}

func (s *storeStub) Filter(ctx context.Context, _ string) ([]domain.Store, error) { return s.List(ctx) }

func (s *storeStub) Get(ctx context.Context, id string) (*domain.Store, error) {
	st, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return st, nil
}

func (s *storeStub) Insert(_ context.Context, in store.Input) (*domain.Store, error) {
	if in.Title == "" {
		return nil, store.ErrTitleRequired
	}
	return &domain.Store{ID: "new-store", Title: in.Title}, nil
}

func (s *storeStub) Update(ctx context.Context, in store.Input) (*domain.Store, error) {
	return s.Get(ctx, in.ID)
}

func (s *storeStub) Delete(ctx context.Context, id string) error {
	_, err := s.Get(ctx, id)
	return err
}

type discountStub struct{ codes map[string]domain.Discount }

func (s *discountStub) GetByCode(_ context.Context, code string) (*domain.Discount, error) {
	d, ok := s.codes[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (s *discountStub) List(context.Context) ([]domain.Discount, error) {
	out := []domain.Discount{}
	for _, d := range s.codes {
		out = append(out, d)
	}
	return out, nil
}

func (s *discountStub) Get(_ context.Context, id string) (*domain.Discount, error) {
	for _, d := range s.codes {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, discount.ErrNotFound
}

func (s *discountStub) Create(_ context.Context, in discount.Input) (*domain.Discount, error) {
	if in.Code == "" {
		return nil, discount.ErrCodeRequired
	}
	d := domain.Discount{ID: "new-discount", Code: in.Code, Type: in.Type, Value: in.Value}
	s.codes[in.Code] = d
	return &d, nil
}

func (s *discountStub) Update(ctx context.Context, in discount.Input) (*domain.Discount, error) {
	return s.Get(ctx, in.ID)
}

func (s *discountStub) Delete(ctx context.Context, id string) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	delete(s.codes, d.Code)
	return nil
}

// userStub knows one admin (api key "admin-key") and one editor (api key "editor-key").
type userStub struct{}

var (
	stubAdmin  = domain.User{ID: "u-admin", Name: "Admin", Email: "admin@example.com", IsAdmin: true, IsOwner: true}
	stubEditor = domain.User{ID: "u-editor", Name: "Editor", Email: "editor@example.com"}
)

func (userStub) Setup(_ context.Context, in user.SetupInput) (*domain.User, error) {
	u := domain.User{ID: "u-setup", Name: in.Name, Email: in.Email, IsAdmin: true, IsOwner: true}
	return &u, nil
}

func (userStub) Login(_ context.Context, email, password string) (*domain.User, error) {
	if email == stubAdmin.Email && password == "secret-password" {
		u := stubAdmin
		return &u, nil
	}
	return nil, user.ErrInvalidCredentials
}

func (userStub) Authenticate(_ context.Context, apiKey string) (*domain.User, error) {
	switch apiKey {
	case "admin-key":
		u := stubAdmin
		return &u, nil
	case "editor-key":
		u := stubEditor
		return &u, nil
	}
	return nil, user.ErrInvalidAPIKey
}

func (userStub) CreateAPIKey(_ context.Context, userID string) (string, error) {
	return "key-for-" + userID, nil
}

type testEnv struct {
	t        *testing.T
	router   *gin.Engine
	carts    *memCarts
	catalog  *catalogStub
	sessions *session.RedisStore
	cookie   *http.Cookie
}

func intPtr(n int) *int { return &n }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	sessions := session.NewRedisStore(rdb, time.Hour, logDiscard())

	carts := &memCarts{rows: map[string]domain.Cart{}}
	catalog := &catalogStub{products: map[string]domain.Product{
		"p-shirt": {ID: "p-shirt", StoreID: "s-1", Title: "Shirt", Price: decimal.NewFromInt(30), Stock: intPtr(3), Published: true, Tags: "clothes"},
		"p-box":   {ID: "p-box", StoreID: "s-1", Title: "Monthly box", Price: decimal.NewFromInt(20), Subscription: true, Published: true},
		"p-draft": {ID: "p-draft", StoreID: "s-1", Title: "Draft", Price: decimal.NewFromInt(5)},
	}}
	stores := &storeStub{stores: map[string]domain.Store{"s-1": {ID: "s-1", Title: "Main street"}}}
	discounts := &discountStub{codes: map[string]domain.Discount{
		"TENOFF": {ID: "d-1", Code: "TENOFF", Type: domain.DiscountAmount, Value: decimal.NewFromInt(10),
			Start: time.Now().Add(-time.Hour), End: time.Now().Add(time.Hour)},
	}}

	calc := shipping.New(config.ShippingConfig{
		HomeCountry:       "Chile",
		FreeThreshold:     decimal.NewFromInt(100),
		DomesticRate:      decimal.NewFromInt(10),
		InternationalRate: decimal.NewFromInt(25),
	}, "webpay")
	carter := cartsvc.New(carts, catalog, stores, discounts, calc, cartsvc.Options{TrackStock: true, DiscountsEnabled: true}, logDiscard())

	router, err := buildRouter(logDiscard(), nil, Deps{
		Sessions:       sessions,
		Redis:          rdb,
		Carts:          carter,
		Products:       catalog,
		Stores:         stores,
		Discounts:      discounts,
		Users:          userStub{},
		SessionCookie:  "sid",
		SessionMaxAge:  3600,
		CORSOrigins:    []string{"https://shop.example"},
		CurrencySymbol: "$",
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{t: t, router: router, carts: carts, catalog: catalog, sessions: sessions}
}

// do sends a request carrying the session cookie from earlier responses.
func (e *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "sid" {
			e.cookie = ck
		}
	}
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d body=%s", want, rec.Code, rec.Body.String())
	}
}

func expectBody(t *testing.T, rec *httptest.ResponseRecorder, substrings ...string) {
	t.Helper()
	for _, s := range substrings {
		if !strings.Contains(rec.Body.String(), s) {
			t.Fatalf("expected body to contain %s, got %s", s, rec.Body.String())
		}
	}
}
