package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/service/shipping"

	"github.com/shopspring/decimal"
)

var (
	ErrMaxQuantity          = domain.Rule("the quantity exceeds the max amount, please contact us for larger orders")
	ErrProductNotFound      = domain.NotFound("product not found")
	ErrSubscriptionExists   = domain.Rule("a subscription is already in your cart, you cannot add more")
	ErrSubscriptionMix      = domain.Rule("subscription products cannot be combined with other items, empty your cart and try again")
	ErrInsufficientStock    = domain.Rule("there is insufficient stock of this product")
	ErrCartEmpty            = domain.Rule("there are no items in your cart")
	ErrItemNotFound         = domain.NotFound("product not found in cart")
	ErrNegativeQuantity     = domain.Invalid("quantity must be zero or more")
	ErrDiscountsDisabled    = domain.Rule("access denied")
	ErrDiscountInvalid      = domain.NotFound("the discount code is invalid or expired")
	ErrDiscountExpired      = domain.Rule("the discount has expired")
	ErrCustomerEmailMissing = domain.Rule("please enter your customer information before continuing")
)

const saveFailed = "error updating cart, please try again"

// maxLineQuantity bounds a single line so quantities and held stock stay within int32.
const maxLineQuantity = math.MaxInt32

type cartStore interface {
	Get(ctx context.Context, sessionID string) (domain.Cart, error)
	Put(ctx context.Context, sessionID string, cart domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
	HeldQuantity(ctx context.Context, productID string) (int, error)
}

type productLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type storeLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Store, error)
}

type discountLookup interface {
	GetByCode(ctx context.Context, code string) (*domain.Discount, error)
}

// Options are the cart rules taken from configuration.
type Options struct {
	TrackStock       bool
	MaxQuantity      int
	DiscountsEnabled bool
}

// Service mutates the cart of a session. The session's Cart field is a read-through copy of
// the persisted cart row: it is loaded on first use and written back after every mutation.
// The stock check is advisory; concurrent adds can both pass it before either persists.
type Service struct {
	carts     cartStore
	products  productLookup
	stores    storeLookup
	discounts discountLookup
	shipping  *shipping.Calculator
	opts      Options
	logger    *log.Logger
	now       func() time.Time
}

func New(carts cartStore, products productLookup, stores storeLookup, discounts discountLookup, calc *shipping.Calculator, opts Options, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		carts:     carts,
		products:  products,
		stores:    stores,
		discounts: discounts,
		shipping:  calc,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

type AddItemInput struct {
	ProductID string
	Quantity  int
	Options   map[string]interface{}
	Comment   string
}

type AddResult struct {
	CartKey    string
	TotalItems int
}

func (s *Service) AddItem(ctx context.Context, sess *domain.Session, in AddItemInput) (AddResult, error) {
	if in.Quantity > maxLineQuantity || (s.opts.MaxQuantity > 0 && in.Quantity > s.opts.MaxQuantity) {
		return AddResult{}, ErrMaxQuantity
	}
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}

	product, err := s.product(ctx, in.ProductID)
	if err != nil {
		return AddResult{}, err
	}
	storeTitle := s.storeTitle(ctx, product.StoreID)

	current, err := s.load(ctx, sess)
	if err != nil {
		return AddResult{}, err
	}
	cart := current.Clone()

	marker := sess.CartSubscription
	if marker == "" {
		marker = cart.SubscriptionProduct()
	}
	if marker != "" && marker != product.ID {
		return AddResult{}, ErrSubscriptionExists
	}
	if product.Subscription && len(cart) > 0 && marker != product.ID {
		return AddResult{}, ErrSubscriptionMix
	}

	if err := s.checkStock(ctx, *product, qty); err != nil {
		return AddResult{}, err
	}

	options := in.Options
	if options == nil {
		options = map[string]interface{}{}
	}
	key := Key(product.ID, options)
	if item, ok := cart[key]; ok {
		if item.Quantity > maxLineQuantity-qty {
			return AddResult{}, ErrMaxQuantity
		}
		item.Quantity += qty
		item.UnitPrice = product.Price
		item.TotalItemPrice = domain.LineTotal(product.Price, item.Quantity)
		cart[key] = item
	} else {
		cart[key] = domain.CartItem{
			ProductID:      product.ID,
			Title:          product.Title,
			Quantity:       qty,
			UnitPrice:      product.Price,
			TotalItemPrice: domain.LineTotal(product.Price, qty),
			Options:        options,
			Image:          product.Image,
			Comment:        strings.TrimSpace(in.Comment),
			Subscription:   product.Subscription,
			Store:          storeTitle,
			Link:           product.Link(),
		}
	}

	if err := s.persist(ctx, sess, cart); err != nil {
		return AddResult{}, err
	}
	if product.Subscription {
		sess.CartSubscription = product.ID
	}
	if err := s.Recompute(ctx, sess); err != nil {
		return AddResult{}, err
	}
	s.logger.Printf("cart service: add session=%s product=%s qty=%d key=%s", sess.ID, product.ID, qty, key)
	return AddResult{CartKey: key, TotalItems: sess.TotalCartItems}, nil
}

// UpdateItem sets the quantity of a line. Zero removes the line.
func (s *Service) UpdateItem(ctx context.Context, sess *domain.Session, key string, quantity int) (int, error) {
	if quantity < 0 {
		return sess.TotalCartItems, ErrNegativeQuantity
	}
	cart, err := s.load(ctx, sess)
	if err != nil {
		return 0, err
	}
	if len(cart) == 0 {
		return 0, ErrCartEmpty
	}
	item, ok := cart[key]
	if !ok {
		return sess.TotalCartItems, ErrItemNotFound
	}
	cart = cart.Clone()
	if quantity == 0 {
		if err := s.RemoveItem(ctx, sess, key); err != nil {
			return sess.TotalCartItems, err
		}
		return sess.TotalCartItems, nil
	}
	if quantity > maxLineQuantity || (s.opts.MaxQuantity > 0 && quantity > s.opts.MaxQuantity) {
		return sess.TotalCartItems, ErrMaxQuantity
	}

	product, err := s.product(ctx, item.ProductID)
	if err != nil {
		return sess.TotalCartItems, err
	}
	if s.opts.TrackStock && product.TracksStock() && quantity > *product.Stock {
		return sess.TotalCartItems, ErrInsufficientStock
	}

	item.Quantity = quantity
	item.UnitPrice = product.Price
	item.TotalItemPrice = domain.LineTotal(product.Price, quantity)
	cart[key] = item

	if err := s.persist(ctx, sess, cart); err != nil {
		return sess.TotalCartItems, err
	}
	if err := s.Recompute(ctx, sess); err != nil {
		return sess.TotalCartItems, err
	}
	return sess.TotalCartItems, nil
}

// RemoveItem deletes a line. Removing the last line tears the whole cart down.
func (s *Service) RemoveItem(ctx context.Context, sess *domain.Session, key string) error {
	cart, err := s.load(ctx, sess)
	if err != nil {
		return err
	}
	if _, ok := cart[key]; !ok {
		return ErrItemNotFound
	}
	cart = cart.Clone()
	delete(cart, key)
	if len(cart) == 0 {
		return s.Empty(ctx, sess)
	}
	if err := s.persist(ctx, sess, cart); err != nil {
		return err
	}
	sess.CartSubscription = cart.SubscriptionProduct()
	return s.Recompute(ctx, sess)
}

// Empty clears all cart state on the session and deletes the persisted row.
func (s *Service) Empty(ctx context.Context, sess *domain.Session) error {
	sess.ClearCart()
	sess.Cart = domain.Cart{}
	if err := s.carts.Delete(ctx, sess.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Printf("cart service: empty session=%s error=%v", sess.ID, err)
		return domain.Persistence(saveFailed, err)
	}
	return nil
}

// Rekey gives the session newID and moves its persisted cart row along with it.
func (s *Service) Rekey(ctx context.Context, sess *domain.Session, newID string) error {
	cart, err := s.load(ctx, sess)
	if err != nil {
		return err
	}
	oldID := sess.ID
	if len(cart) > 0 {
		if err := s.carts.Put(ctx, newID, cart); err != nil {
			s.logger.Printf("cart service: rekey session=%s error=%v", oldID, err)
			return domain.Persistence(saveFailed, err)
		}
		if err := s.carts.Delete(ctx, oldID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("cart service: rekey drop session=%s error=%v", oldID, err)
		}
	}
	sess.ID = newID
	return nil
}

// Retrieve returns the persisted cart of the session.
func (s *Service) Retrieve(ctx context.Context, sess *domain.Session) (domain.Cart, error) {
	return s.load(ctx, sess)
}

// ApplyDiscount validates code against its date window and records it on the session.
func (s *Service) ApplyDiscount(ctx context.Context, sess *domain.Session, code string) error {
	cart, err := s.load(ctx, sess)
	if err != nil {
		return err
	}
	if len(cart) == 0 {
		return ErrCartEmpty
	}
	if !s.opts.DiscountsEnabled {
		return ErrDiscountsDisabled
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrDiscountInvalid
	}
	d, err := s.discounts.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrDiscountInvalid
		}
		return domain.Persistence("error applying discount, please try again", err)
	}
	if !d.ActiveAt(s.now()) {
		return ErrDiscountExpired
	}
	sess.DiscountCode = d.Code
	return s.Recompute(ctx, sess)
}

// RemoveDiscount clears the code and recomputes totals.
func (s *Service) RemoveDiscount(ctx context.Context, sess *domain.Session) error {
	sess.DiscountCode = ""
	return s.Recompute(ctx, sess)
}

// Checkout recomputes totals before the shipping step. It requires a cart and a customer email.
func (s *Service) Checkout(ctx context.Context, sess *domain.Session) error {
	cart, err := s.load(ctx, sess)
	if err != nil {
		return err
	}
	if len(cart) == 0 {
		return ErrCartEmpty
	}
	if strings.TrimSpace(sess.CustomerEmail) == "" {
		return ErrCustomerEmailMissing
	}
	return s.Recompute(ctx, sess)
}

// Recompute derives every cart total on the session from its line items: item count,
// subtotal, discount, net amount, shipping and grand total.
func (s *Service) Recompute(ctx context.Context, sess *domain.Session) error {
	cart, err := s.load(ctx, sess)
	if err != nil {
		return err
	}
	sess.TotalCartItems = cart.Quantity()
	sess.TotalCartProducts = len(cart)
	if len(cart) == 0 {
		sess.TotalCartNet = decimal.Zero
		sess.TotalCartDiscount = decimal.Zero
		sess.TotalCartShipping = decimal.Zero
		sess.TotalCartAmount = decimal.Zero
		sess.ShippingMessage = ""
		return nil
	}

	subtotal := cart.Subtotal()
	off, err := s.discountAmount(ctx, sess, subtotal)
	if err != nil {
		return err
	}
	net := subtotal.Sub(off)
	sess.TotalCartDiscount = off
	sess.TotalCartNet = net
	s.shipping.Apply(sess, net)
	return nil
}

func (s *Service) discountAmount(ctx context.Context, sess *domain.Session, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if sess.DiscountCode == "" || !s.opts.DiscountsEnabled {
		return decimal.Zero, nil
	}
	d, err := s.discounts.GetByCode(ctx, sess.DiscountCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("cart service: dropping unknown discount session=%s code=%s", sess.ID, sess.DiscountCode)
			sess.DiscountCode = ""
			return decimal.Zero, nil
		}
		return decimal.Zero, domain.Persistence(saveFailed, err)
	}
	if !d.ActiveAt(s.now()) {
		s.logger.Printf("cart service: dropping expired discount session=%s code=%s", sess.ID, d.Code)
		sess.DiscountCode = ""
		return decimal.Zero, nil
	}
	return d.Amount(subtotal), nil
}

// checkStock rejects qty when it exceeds raw stock, or raw stock less the quantity held in
// every persisted cart.
func (s *Service) checkStock(ctx context.Context, p domain.Product, qty int) error {
	if !s.opts.TrackStock || !p.TracksStock() {
		return nil
	}
	stock := *p.Stock
	if qty > stock {
		return ErrInsufficientStock
	}
	held, err := s.carts.HeldQuantity(ctx, p.ID)
	if err != nil {
		s.logger.Printf("cart service: held stock product=%s error=%v", p.ID, err)
		return domain.Persistence(saveFailed, err)
	}
	if qty > stock-held {
		return ErrInsufficientStock
	}
	return nil
}

func (s *Service) product(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, domain.Persistence(saveFailed, err)
	}
	if p.Price.IsNegative() {
		return nil, domain.Invalid("product price must not be negative")
	}
	return p, nil
}

func (s *Service) storeTitle(ctx context.Context, storeID string) string {
	if storeID == "" || s.stores == nil {
		return ""
	}
	st, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		s.logger.Printf("cart service: store lookup id=%s error=%v", storeID, err)
		return ""
	}
	return st.Title
}

// load returns the session cart, reading it from storage when the session has no copy yet.
func (s *Service) load(ctx context.Context, sess *domain.Session) (domain.Cart, error) {
	if sess.Cart != nil {
		return sess.Cart, nil
	}
	cart, err := s.carts.Get(ctx, sess.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		cart = domain.Cart{}
	case err != nil:
		s.logger.Printf("cart service: load session=%s error=%v", sess.ID, err)
		return nil, domain.Persistence(saveFailed, err)
	case cart == nil:
		cart = domain.Cart{}
	}
	sess.Cart = cart
	return cart, nil
}

func (s *Service) persist(ctx context.Context, sess *domain.Session, cart domain.Cart) error {
	if err := s.carts.Put(ctx, sess.ID, cart); err != nil {
		s.logger.Printf("cart service: save session=%s error=%v", sess.ID, err)
		return domain.Persistence(saveFailed, err)
	}
	sess.Cart = cart
	return nil
}
