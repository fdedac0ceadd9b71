package httpserver

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/service/cart"
	"storefront/internal/service/discount"
	"storefront/internal/service/product"
	"storefront/internal/service/store"
	"storefront/internal/service/user"
	"storefront/internal/session"

	"github.com/redis/go-redis/v9"
)

// CartService is the cart aggregate as seen by the storefront handlers.
type CartService interface {
	AddItem(ctx context.Context, sess *domain.Session, in cart.AddItemInput) (cart.AddResult, error)
	UpdateItem(ctx context.Context, sess *domain.Session, key string, quantity int) (int, error)
	RemoveItem(ctx context.Context, sess *domain.Session, key string) error
	Empty(ctx context.Context, sess *domain.Session) error
	Retrieve(ctx context.Context, sess *domain.Session) (domain.Cart, error)
	ApplyDiscount(ctx context.Context, sess *domain.Session, code string) error
	RemoveDiscount(ctx context.Context, sess *domain.Session) error
	Checkout(ctx context.Context, sess *domain.Session) error
	Recompute(ctx context.Context, sess *domain.Session) error
	Rekey(ctx context.Context, sess *domain.Session, newID string) error
}

type ProductService interface {
	AdminList(ctx context.Context, pageNum int) (product.Page, error)
	List(ctx context.Context, pageNum int) (product.Page, error)
	Search(ctx context.Context, term string, pageNum int) (product.Page, error)
	Filter(ctx context.Context, term string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Show(ctx context.Context, ref string) (*domain.Product, error)
	Related(ctx context.Context, p domain.Product) ([]domain.Product, error)
	Insert(ctx context.Context, in product.Input) (*domain.Product, error)
	Update(ctx context.Context, in product.Input) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
	RemoveOption(ctx context.Context, id, name string) error
	ValidatePermalink(ctx context.Context, permalink, excludeID string) error
}

type StoreService interface {
	List(ctx context.Context) ([]domain.Store, error)
	Filter(ctx context.Context, term string) ([]domain.Store, error)
	Get(ctx context.Context, id string) (*domain.Store, error)
	Insert(ctx context.Context, in store.Input) (*domain.Store, error)
	Update(ctx context.Context, in store.Input) (*domain.Store, error)
	Delete(ctx context.Context, id string) error
}

type DiscountService interface {
	List(ctx context.Context) ([]domain.Discount, error)
	Get(ctx context.Context, id string) (*domain.Discount, error)
	Create(ctx context.Context, in discount.Input) (*domain.Discount, error)
	Update(ctx context.Context, in discount.Input) (*domain.Discount, error)
	Delete(ctx context.Context, id string) error
}

type UserService interface {
	Setup(ctx context.Context, in user.SetupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, apiKey string) (*domain.User, error)
	CreateAPIKey(ctx context.Context, userID string) (string, error)
}

// Deps wires services into the HTTP layer.
type Deps struct {
	Sessions  session.Store
	Redis     *redis.Client
	Carts     CartService
	Products  ProductService
	Stores    StoreService
	Discounts DiscountService
	Users     UserService

	SessionCookie  string
	CookieSecure   bool
	SessionMaxAge  int
	CORSOrigins    []string
	CurrencySymbol string
}

func (d Deps) validate() error {
	switch {
	case d.Sessions == nil:
		return errors.New("httpserver: session store is required")
	case d.Carts == nil:
		return errors.New("httpserver: cart service is required")
	case d.Products == nil:
		return errors.New("httpserver: product service is required")
	case d.Stores == nil:
		return errors.New("httpserver: store service is required")
	case d.Discounts == nil:
		return errors.New("httpserver: discount service is required")
	case d.Users == nil:
		return errors.New("httpserver: user service is required")
	}
	return nil
}
