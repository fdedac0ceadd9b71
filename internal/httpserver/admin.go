package httpserver

import (
	"net/http"

	"storefront/internal/service/discount"
	"storefront/internal/service/product"
	"storefront/internal/service/store"

	"github.com/gin-gonic/gin"
)

func (h *handlers) adminProducts(c *gin.Context) {
	page, err := h.deps.Products.AdminList(c.Request.Context(), pageParam(c))
	if err != nil {
		h.fail(c, err, "error listing products")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handlers) filterProducts(c *gin.Context) {
	items, err := h.deps.Products.Filter(c.Request.Context(), c.Param("search"))
	if err != nil {
		h.fail(c, err, "error filtering products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": items, "searchTerm": c.Param("search")})
}

func (h *handlers) editProduct(c *gin.Context) {
	p, err := h.deps.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "product not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) insertProduct(c *gin.Context) {
	var in product.Input
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.deps.Products.Insert(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "error inserting product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "new product successfully created", "productId": p.ID})
}

func (h *handlers) updateProduct(c *gin.Context) {
	var in product.Input
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.deps.Products.Update(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "failed to save, please try again")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully saved", "product": p})
}

type idRequest struct {
	ProductID string `json:"productId"`
	StoreID   string `json:"storeId"`
	Discount  string `json:"discountId"`
}

func (h *handlers) deleteProduct(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.Products.Delete(c.Request.Context(), req.ProductID); err != nil {
		h.fail(c, err, "error deleting product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product successfully deleted"})
}

type publishedRequest struct {
	ID    string `json:"id"`
	State bool   `json:"state"`
}

func (h *handlers) publishedState(c *gin.Context) {
	var req publishedRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.Products.SetPublished(c.Request.Context(), req.ID, req.State); err != nil {
		h.fail(c, err, "failed to update the published state")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "published state updated"})
}

type removeOptionRequest struct {
	ProductID string `json:"productId"`
	Option    string `json:"optName"`
}

func (h *handlers) removeOption(c *gin.Context) {
	var req removeOptionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.Products.RemoveOption(c.Request.Context(), req.ProductID, req.Option); err != nil {
		h.fail(c, err, "failed to remove option")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "option removed"})
}

type permalinkRequest struct {
	Permalink string `json:"permalink"`
	DocID     string `json:"docId"`
}

func (h *handlers) validatePermalink(c *gin.Context) {
	var req permalinkRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.Products.ValidatePermalink(c.Request.Context(), req.Permalink, req.DocID); err != nil {
		h.fail(c, err, "permalink already exists")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "permalink validated successfully"})
}

func (h *handlers) adminStores(c *gin.Context) {
	items, err := h.deps.Stores.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "error listing stores")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (h *handlers) filterStores(c *gin.Context) {
	items, err := h.deps.Stores.Filter(c.Request.Context(), c.Param("search"))
	if err != nil {
		h.fail(c, err, "error filtering stores")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": items, "searchTerm": c.Param("search")})
}

func (h *handlers) editStore(c *gin.Context) {
	st, err := h.deps.Stores.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "store not found")
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *handlers) insertStore(c *gin.Context) {
	var in store.Input
	if !bindJSON(c, &in) {
		return
	}
	st, err := h.deps.Stores.Insert(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "error inserting store")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "new store successfully created", "storeId": st.ID})
}

func (h *handlers) updateStore(c *gin.Context) {
	var in store.Input
	if !bindJSON(c, &in) {
		return
	}
	st, err := h.deps.Stores.Update(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "failed to save, please try again")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully saved", "store": st})
}

func (h *handlers) deleteStore(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.Stores.Delete(c.Request.Context(), req.StoreID); err != nil {
		h.fail(c, err, "error deleting store")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "store successfully deleted"})
}

func (h *handlers) adminDiscounts(c *gin.Context) {
	items, err := h.deps.Discounts.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "error listing discounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"discounts": items})
}

func (h *handlers) editDiscount(c *gin.Context) {
	d, err := h.deps.Discounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "discount not found")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handlers) createDiscount(c *gin.Context) {
	var in discount.Input
	if !bindJSON(c, &in) {
		return
	}
	d, err := h.deps.Discounts.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "discount code create failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "discount code created successfully", "discountId": d.ID})
}

func (h *handlers) updateDiscount(c *gin.Context) {
	var in discount.Input
	if !bindJSON(c, &in) {
		return
	}
	d, err := h.deps.Discounts.Update(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "failed to save, please try again")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully saved", "discount": d})
}

func (h *handlers) deleteDiscount(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.Discounts.Delete(c.Request.Context(), req.Discount); err != nil {
		h.fail(c, err, "error deleting discount code")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "discount code successfully deleted"})
}
