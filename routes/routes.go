package routes

import (
	"net/http"

	"albaceo/analytics"
	"albaceo/auth"
	"albaceo/cart"
	"albaceo/checkout"
	"albaceo/coupons"
	"albaceo/middleware"
	"albaceo/orders"
	"albaceo/products"
	"albaceo/ratelim"

	"github.com/julienschmidt/httprouter"
)

// RoutesWrapper mounts every route group on the router.
func RoutesWrapper(router *httprouter.Router, rl *ratelim.RateLimiter) {
	AddStaticRoutes(router)
	AddAuthRoutes(router, rl)
	AddProductRoutes(router, rl)
	AddCartRoutes(router, rl)
	AddCouponRoutes(router, rl)
	AddCheckoutRoutes(router, rl)
	AddOrderRoutes(router, rl)
	AddAnalyticsRoutes(router, rl)
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/productpic/*filepath", http.Dir("static/productpic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.RefreshToken))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
}

func AddProductRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/products", products.GetAllProducts)
	router.GET("/api/products/featured", products.GetFeaturedProducts)
	router.GET("/api/products/recommendations", products.GetRecommendedProducts)
	router.GET("/api/products/category/:category", products.GetProductsByCategory)
	router.GET("/api/products/product/:id", products.GetProduct)

	router.POST("/api/products", middleware.Authenticate(middleware.RequireAdmin(products.CreateProduct)))
	router.DELETE("/api/products/product/:id", middleware.Authenticate(middleware.RequireAdmin(products.DeleteProduct)))
	router.PATCH("/api/products/product/:id/featured", middleware.Authenticate(middleware.RequireAdmin(products.ToggleFeaturedProduct)))
	router.PATCH("/api/products/product/:id/stock", middleware.Authenticate(middleware.RequireAdmin(products.RestockProduct)))
}

func AddCartRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/cart", middleware.Authenticate(cart.GetCart))
	router.POST("/api/cart", middleware.Authenticate(cart.AddToCart))
	router.PUT("/api/cart/item/:id", middleware.Authenticate(cart.UpdateQuantity))
	router.DELETE("/api/cart", middleware.Authenticate(cart.RemoveFromCart))
}

func AddCouponRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/coupons", middleware.Authenticate(coupons.GetCoupons))
	router.POST("/api/coupons/validate", rl.Limit(middleware.Authenticate(coupons.ValidateCoupon)))
	router.POST("/api/coupons", middleware.Authenticate(middleware.RequireAdmin(coupons.CreateCoupon)))
}

func AddCheckoutRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/checkout/session", rl.Limit(middleware.Authenticate(checkout.CreateCheckoutSession)))
	router.POST("/api/checkout/verify", rl.Limit(middleware.Authenticate(checkout.VerifySession)))

	// Authenticated by the Stripe-Signature header, never by JWT, and never
	// rate limited: dropping a delivery delays fulfilment.
	router.POST("/api/checkout/webhook", checkout.HandleStripeWebhook)
}

func AddOrderRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/orders", middleware.Authenticate(orders.GetMyOrders))
	router.GET("/api/orders/order/:id", middleware.Authenticate(orders.GetOrder))
	router.GET("/api/orders/order/:id/invoice", rl.Limit(middleware.Authenticate(orders.DownloadInvoice)))
	router.POST("/api/orders/invoice/verify", middleware.Authenticate(middleware.RequireAdmin(orders.VerifyInvoice)))
}

func AddAnalyticsRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/analytics/overview", middleware.Authenticate(middleware.RequireAdmin(analytics.GetOverview)))
}
