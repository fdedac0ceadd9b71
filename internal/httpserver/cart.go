package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	ProductID string          `json:"productId"`
	Quantity  flexInt         `json:"productQuantity"`
	Options   json.RawMessage `json:"productOptions"`
	Comment   string          `json:"productComment"`
}

func (h *handlers) addToCart(c *gin.Context) {
	var req addToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	sess := currentSession(c)
	res, err := h.deps.Carts.AddItem(c.Request.Context(), sess, cartsvc.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  int(req.Quantity),
		Options:   domain.ParseOptions(req.Options),
		Comment:   req.Comment,
	})
	if err != nil {
		h.fail(c, err, "error updating cart, please try again")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "cart successfully updated",
		"cartId":         res.CartKey,
		"totalCartItems": res.TotalItems,
	})
}

type updateCartRequest struct {
	CartID   string  `json:"cartId"`
	Quantity flexInt `json:"quantity"`
}

func (h *handlers) updateCart(c *gin.Context) {
	var req updateCartRequest
	if !bindJSON(c, &req) {
		return
	}
	total, err := h.deps.Carts.UpdateItem(c.Request.Context(), currentSession(c), req.CartID, int(req.Quantity))
	if err != nil {
		h.failWith(c, err, "error updating cart", gin.H{"totalCartItems": total})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart successfully updated", "totalCartItems": total})
}

type removeFromCartRequest struct {
	CartID string `json:"cartId"`
}

func (h *handlers) removeFromCart(c *gin.Context) {
	var req removeFromCartRequest
	if !bindJSON(c, &req) {
		return
	}
	sess := currentSession(c)
	if err := h.deps.Carts.RemoveItem(c.Request.Context(), sess, req.CartID); err != nil {
		h.fail(c, err, "error updating cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product successfully removed", "totalCartItems": sess.TotalCartItems})
}

func (h *handlers) emptyCart(c *gin.Context) {
	if err := h.deps.Carts.Empty(c.Request.Context(), currentSession(c)); err != nil {
		h.fail(c, err, "error emptying cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart successfully emptied", "totalCartItems": 0})
}

func (h *handlers) retrieveCart(c *gin.Context) {
	cart, err := h.deps.Carts.Retrieve(c.Request.Context(), currentSession(c))
	if err != nil {
		h.fail(c, err, "error retrieving cart")
		return
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

type discountCodeRequest struct {
	Code string `json:"discountCode"`
}

func (h *handlers) addDiscountCode(c *gin.Context) {
	var req discountCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.Carts.ApplyDiscount(c.Request.Context(), currentSession(c), req.Code); err != nil {
		h.fail(c, err, "error applying discount code")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "discount code applied"})
}

func (h *handlers) removeDiscountCode(c *gin.Context) {
	if err := h.deps.Carts.RemoveDiscount(c.Request.Context(), currentSession(c)); err != nil {
		h.fail(c, err, "error removing discount code")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "discount code removed"})
}

type customerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Country   string `json:"country"`
}

func (h *handlers) setCustomer(c *gin.Context) {
	var req customerRequest
	if !bindJSON(c, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "please enter a valid email address"})
		return
	}
	sess := currentSession(c)
	sess.CustomerEmail = email
	sess.CustomerFirstName = strings.TrimSpace(req.FirstName)
	sess.CustomerLastName = strings.TrimSpace(req.LastName)
	sess.CustomerCountry = strings.TrimSpace(req.Country)
	if err := h.deps.Carts.Recompute(c.Request.Context(), sess); err != nil {
		h.fail(c, err, "error updating customer details")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer details saved"})
}

func (h *handlers) checkoutShipping(c *gin.Context) {
	sess := currentSession(c)
	if err := h.deps.Carts.Checkout(c.Request.Context(), sess); err != nil {
		h.fail(c, err, "error preparing checkout")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": totals(sess)})
}

func (h *handlers) cartData(c *gin.Context) {
	sess := currentSession(c)
	cart, err := h.deps.Carts.Retrieve(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err, "error retrieving cart")
		return
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	c.JSON(http.StatusOK, gin.H{
		"cart":           cart,
		"session":        totals(sess),
		"currencySymbol": h.deps.CurrencySymbol,
	})
}

// totals is the client view of a session: cart totals and customer details, never the admin user.
func totals(sess *domain.Session) gin.H {
	return gin.H{
		"totalCartItems":     sess.TotalCartItems,
		"totalCartProducts":  sess.TotalCartProducts,
		"totalCartNetAmount": sess.TotalCartNet,
		"totalCartDiscount":  sess.TotalCartDiscount,
		"totalCartShipping":  sess.TotalCartShipping,
		"totalCartAmount":    sess.TotalCartAmount,
		"shippingMessage":    sess.ShippingMessage,
		"discountCode":       sess.DiscountCode,
		"customerEmail":      sess.CustomerEmail,
		"customerFirstname":  sess.CustomerFirstName,
		"customerLastname":   sess.CustomerLastName,
		"customerCountry":    sess.CustomerCountry,
	}
}
