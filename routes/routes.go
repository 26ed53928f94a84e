package routes

import (
	"net/http"
	"time"

	"backend/cache"
	"backend/controllers"
	"backend/middlewares"
	"backend/services"
	"backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires services into controllers and mounts everything except
// auth, health and metrics behind the token middleware.
func SetupRouter(db *gorm.DB, cacheClient *cache.Client, m *utils.Metrics) *gin.Engine {
	catalogSvc := services.NewCatalogService(db)
	foodSvc := services.NewFoodService(db, catalogSvc, cacheClient, m)
	mealSvc := services.NewMealService(db, catalogSvc, m)
	recipeSvc := services.NewRecipeService(db, foodSvc, mealSvc, catalogSvc, m)
	analyticsSvc := services.NewAnalyticsService(db, mealSvc)
	ingestionSvc := services.NewIngestionService(foodSvc, m)
	weightSvc := services.NewWeightService(db)

	foodCtl := controllers.NewFoodController(foodSvc)
	mealCtl := controllers.NewMealController(mealSvc)
	recipeCtl := controllers.NewRecipeController(recipeSvc)
	analyticsCtl := controllers.NewAnalyticsController(analyticsSvc)
	ingestionCtl := controllers.NewIngestionController(ingestionSvc)
	weightCtl := controllers.NewWeightController(weightSvc)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(requestMetrics(m))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		foods := api.Group("/foods")
		{
			foods.POST("", foodCtl.SaveFood)
			foods.GET("", foodCtl.ListFoods)
			foods.GET("/page", foodCtl.ListFoodsPage)
			foods.GET("/:id", foodCtl.GetFood)
			foods.PUT("/:id", foodCtl.UpdateFood)
			foods.DELETE("/quantities/:id", foodCtl.DeleteQuantity)
			foods.DELETE("/ingredients/:id", foodCtl.DeleteIngredient)
			foods.POST("/ingredients/:id/favorite", foodCtl.ToggleFavorite)
		}

		meals := api.Group("/meals")
		{
			meals.POST("", mealCtl.RecordConsumption)
			meals.POST("/food", mealCtl.AddFoodToMeal)
			meals.GET("", mealCtl.ListConsumption)
			meals.GET("/daily", mealCtl.DailyMeals)
			meals.GET("/weekly", mealCtl.WeeklyMeals)
			meals.PUT("/:id", mealCtl.UpdateConsumption)
			meals.DELETE("/:id", mealCtl.DeleteConsumption)
		}

		recipes := api.Group("/recipes")
		{
			recipes.POST("", recipeCtl.CreateRecipe)
			recipes.GET("", recipeCtl.ListRecipes)
			recipes.GET("/consumption", recipeCtl.ListRecipeConsumption)
			recipes.DELETE("/consumption/:id", recipeCtl.DeleteRecipeConsumption)
			recipes.GET("/:id", recipeCtl.RecipeDetail)
			recipes.PUT("/:id", recipeCtl.UpdateRecipe)
			recipes.DELETE("/:id", recipeCtl.DeleteRecipe)
			recipes.POST("/:id/meal", recipeCtl.AddRecipeToMeal)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/daily", analyticsCtl.DailyTotals)
			analytics.GET("/weekly", analyticsCtl.WeeklyAverages)
			analytics.GET("/macros", analyticsCtl.MacroDistribution)
			analytics.GET("/frequency", analyticsCtl.FoodFrequency)
			analytics.GET("/summary", analyticsCtl.Summary)
			analytics.GET("/trends", analyticsCtl.Trends)
		}

		batches := api.Group("/batches")
		{
			batches.POST("", ingestionCtl.ParseBatch)
			batches.GET("/:handle", ingestionCtl.PreviewBatch)
			batches.POST("/:handle/confirm", ingestionCtl.ConfirmBatch)
		}

		api.POST("/weights", weightCtl.AddWeight)
		api.GET("/weights", weightCtl.ListWeights)
		api.DELETE("/weights/:id", weightCtl.DeleteWeight)
		api.POST("/calories", weightCtl.AddCalories)
		api.GET("/calories", weightCtl.ListCalories)
	}

	return r
}

func requestMetrics(m *utils.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
