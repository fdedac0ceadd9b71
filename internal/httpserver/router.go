package httpserver

import (
	"io"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the storefront and admin API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if deps.SessionCookie == "" {
		deps.SessionCookie = "sid"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", apiKeyHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.Redis))

	h := &handlers{deps: deps, logger: logger}
	site := router.Group("/")
	site.Use(sessionMiddleware(deps.Sessions, deps.SessionCookie, deps.SessionMaxAge, deps.CookieSecure, logger))

	site.GET("/", h.listProducts)
	site.GET("/page/:page", h.listProducts)
	site.GET("/product/:id", h.showProduct)
	site.GET("/search/:term", h.searchProducts)
	site.GET("/search/:term/:page", h.searchProducts)
	site.GET("/category/:cat", h.categoryProducts)
	site.GET("/category/:cat/:page", h.categoryProducts)

	site.POST("/product/addtocart", h.addToCart)
	site.POST("/product/updatecart", h.updateCart)
	site.POST("/product/removefromcart", h.removeFromCart)
	site.POST("/product/emptycart", h.emptyCart)
	site.GET("/emptycart", h.emptyCart)
	site.GET("/cart/retrieve", h.retrieveCart)

	site.POST("/checkout/adddiscountcode", h.addDiscountCode)
	site.POST("/checkout/removediscountcode", h.removeDiscountCode)
	site.POST("/checkout/customer", h.setCustomer)
	site.GET("/checkout/shipping", h.checkoutShipping)
	site.GET("/checkout/cartdata", h.cartData)

	site.POST("/admin/setup", h.setup)
	site.POST("/admin/login", h.login)
	site.GET("/admin/logout", h.logout)

	admin := site.Group("/admin")
	admin.Use(requireUser(deps.Users, logger))
	write := requireAdmin()

	admin.POST("/createApiKey", write, h.createAPIKey)
	admin.POST("/validatePermalink", h.validatePermalink)

	admin.GET("/products", h.adminProducts)
	admin.GET("/products/:page", h.adminProducts)
	admin.GET("/products/filter/:search", h.filterProducts)
	admin.GET("/product/edit/:id", h.editProduct)
	admin.POST("/product/insert", write, h.insertProduct)
	admin.POST("/product/update", write, h.updateProduct)
	admin.POST("/product/delete", write, h.deleteProduct)
	admin.POST("/product/publishedState", write, h.publishedState)
	admin.POST("/product/removeoption", write, h.removeOption)

	admin.GET("/stores", h.adminStores)
	admin.GET("/stores/filter/:search", h.filterStores)
	admin.GET("/stores/edit/:id", h.editStore)
	admin.POST("/stores/insert", write, h.insertStore)
	admin.POST("/stores/update", write, h.updateStore)
	admin.POST("/stores/delete", write, h.deleteStore)

	admin.GET("/settings/discounts", h.adminDiscounts)
	admin.GET("/settings/discount/edit/:id", h.editDiscount)
	admin.POST("/settings/discount/create", write, h.createDiscount)
	admin.POST("/settings/discount/update", write, h.updateDiscount)
	admin.DELETE("/settings/discount/delete", write, h.deleteDiscount)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
