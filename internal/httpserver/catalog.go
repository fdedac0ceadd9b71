package httpserver

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	page, err := h.deps.Products.List(c.Request.Context(), pageParam(c))
	if err != nil {
		h.fail(c, err, "error listing products")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handlers) showProduct(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.deps.Products.Show(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err, "product not found")
		return
	}
	related, err := h.deps.Products.Related(ctx, *p)
	if err != nil {
		h.logger.Printf("handler: related products id=%s err=%v", p.ID, err)
		related = nil
	}
	if related == nil {
		related = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"product": p, "relatedProducts": related})
}

func (h *handlers) searchProducts(c *gin.Context) {
	h.searchBy(c, c.Param("term"))
}

func (h *handlers) categoryProducts(c *gin.Context) {
	h.searchBy(c, c.Param("cat"))
}

func (h *handlers) searchBy(c *gin.Context, term string) {
	page, err := h.deps.Products.Search(c.Request.Context(), term, pageParam(c))
	if err != nil {
		h.fail(c, err, "error searching products")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"searchTerm":        term,
		"results":           page.Items,
		"totalProductCount": page.Total,
		"pageNum":           page.PageNum,
		"productsPerPage":   page.PerPage,
	})
}
