package handlers

import "github.com/gin-gonic/gin"

// Handlers bundles every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth        *AuthHandler
	Profile     *ProfileHandler
	Account     *AccountHandler
	Category    *CategoryHandler
	Planning    *PlanningHandler
	Transaction *TransactionHandler
	Report      *ReportHandler
}

// RegisterRoutes mounts the API under v1. requireAuth guards everything
// except register, login and refresh; authLimit throttles the /auth group.
func RegisterRoutes(v1 *gin.RouterGroup, h Handlers, requireAuth, authLimit gin.HandlerFunc) {
	// Public auth routes
	auth := v1.Group("/auth", authLimit)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", requireAuth, h.Auth.Logout)

	// Protected routes
	protected := v1.Group("/", requireAuth)

	protected.GET("/profile", h.Profile.GetProfile)
	protected.PUT("/profile", h.Profile.UpdateProfile)
	protected.POST("/profile/photo", h.Profile.UploadPhoto)
	protected.PUT("/settings", h.Profile.UpdateSettings)

	protected.GET("/home", h.Report.Home)
	protected.GET("/dashboard", h.Report.Dashboard)
	protected.GET("/manage", h.Report.Manage)

	accounts := protected.Group("/accounts")
	accounts.POST("", h.Account.CreateAccount)
	accounts.GET("", h.Account.ListAccounts)
	accounts.GET("/:id", h.Account.GetAccount)
	accounts.PUT("/:id", h.Account.UpdateAccount)
	accounts.DELETE("/:id", h.Account.DeleteAccount)

	categories := protected.Group("/categories")
	categories.POST("", h.Category.CreateCategory)
	categories.GET("", h.Category.ListCategories)
	categories.GET("/:id", h.Category.GetCategory)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.POST("/:id/toggle-essential", h.Category.ToggleEssential)
	categories.DELETE("/:id", h.Category.DeleteCategory)

	planning := protected.Group("/planning")
	planning.GET("", h.Planning.GetPlanning)
	planning.POST("", h.Planning.SetPlan)
	planning.PUT("/categories/:id", h.Planning.UpdatePlannedAmount)
	planning.DELETE("/categories/:id", h.Planning.DeletePlannedCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.ListTransactions)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	reports := protected.Group("/reports")
	reports.GET("", h.Report.Reports)
	reports.GET("/export/csv", h.Report.ExportCSV)
	reports.GET("/export/pdf", h.Report.ExportPDF)
}
