package main

import (
	"crypto/tls"
	"log"
	"net/http"
	"os"

	"gamestore/cache"
	"gamestore/db"
	"gamestore/handlers"
	"gamestore/middleware"
	"gamestore/monitoring"
	"gamestore/services"
	"gamestore/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	utils.InitLogger()
	db.InitDB()

	if err := cache.InitRedis(); err != nil {
		utils.Log.Warn("Redis unavailable, running without cache: ", err)
	}

	handlers.Cart = services.NewCart(db.DB)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(monitoring.PrometheusMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Public routes
	r.POST("/login", handlers.Login)
	r.POST("/users", handlers.Register)
	r.GET("/games", handlers.GetGames)
	r.GET("/games/:id", handlers.GetGameByID)
	r.GET("/genres", handlers.GetGenres)
	r.GET("/search", handlers.SearchGames)
	r.GET("/metrics", monitoring.PrometheusHandler())

	protected := r.Group("/", handlers.AuthMiddleware())
	{
		protected.POST("/cart/:gameID", handlers.AddToCart)
		protected.DELETE("/cart/:gameID", handlers.RemoveFromCart)
		protected.GET("/cart", handlers.ViewCart)
		protected.POST("/buy/:gameID", handlers.BuyGame)
		protected.GET("/library", handlers.GetLibrary)
		protected.GET("/games/:id/comments", handlers.GetComments)
		protected.POST("/games/:id/comments", handlers.CreateComment)
		protected.PUT("/comments/:id", handlers.UpdateComment)
		protected.DELETE("/comments/:id", handlers.DeleteComment)
	}

	admin := r.Group("/", handlers.AuthMiddleware(), handlers.RequireAdmin())
	{
		admin.GET("/stats", handlers.GetDashboardStats)
		admin.DELETE("/ownership/:clientID/:gameID", handlers.RemoveOwnership)
	}

	// REST resources: reads for any authenticated user, writes for admins.
	api := r.Group("/api", handlers.AuthMiddleware())
	handlers.GamesResource.Mount(api.Group("/games"))
	handlers.ClientsResource.Mount(api.Group("/clients"))
	handlers.GenresResource.Mount(api.Group("/genre"))
	handlers.CommentsResource.Mount(api.Group("/comment"))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	useHTTPS := os.Getenv("USE_HTTPS") == "true"
	certFile := os.Getenv("TLS_CERT_FILE")
	keyFile := os.Getenv("TLS_KEY_FILE")

	if useHTTPS && certFile != "" && keyFile != "" {
		utils.Log.Info("Starting server with HTTPS on port ", port)

		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		server := &http.Server{
			Addr:      ":" + port,
			Handler:   r,
			TLSConfig: tlsConfig,
		}
		if err := server.ListenAndServeTLS(certFile, keyFile); err != nil {
			log.Fatal("Failed to start HTTPS server:", err)
		}
	} else {
		utils.Log.Info("Starting server with HTTP on port ", port)
		if err := r.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}
}
