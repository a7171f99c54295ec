package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/plantguardian/plantguard-backend/internal/errors"
	"github.com/plantguardian/plantguard-backend/internal/services"
)

var (
	plantAPIService *services.PlantAPIService
	analysisService *services.AnalysisService
	logger          *log.Logger
)

func init() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// Initialize logger
	logger = log.New(os.Stdout, "[PLANTGUARD] ", log.LstdFlags)

	// Initialize services
	plantAPIService = services.NewPlantAPIService(os.Getenv("PLANT_API_BASE"))

	var store services.AnalysisStore = services.NewNoopStore()
	if creds := os.Getenv("FIREBASE_CREDENTIALS_FILE"); creds != "" {
		firebaseService, err := services.NewFirebaseService(creds, os.Getenv("FIREBASE_BUCKET_NAME"), logger)
		if err != nil {
			logger.Printf("Failed to initialize firebase service, continuing without persistence: %v", err)
		} else {
			store = firebaseService
		}
	}

	analysisService = services.NewAnalysisService(plantAPIService, store, logger)
}

func handleError(c *gin.Context, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		switch apiErr.Type {
		case errors.ErrorTypeValidation:
			c.JSON(http.StatusBadRequest, apiErr)
		case errors.ErrorTypeExternal:
			c.JSON(http.StatusServiceUnavailable, apiErr)
		case errors.ErrorTypeMalformed:
			c.JSON(http.StatusBadGateway, apiErr)
		case errors.ErrorTypeStorage:
			c.JSON(http.StatusInternalServerError, apiErr)
		default:
			c.JSON(http.StatusInternalServerError, apiErr)
		}
		return
	}

	// Handle unknown errors
	c.JSON(http.StatusInternalServerError, errors.NewInternalError(err))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "*")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func setupRouter() *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "Plant AI Guardian Backend",
		})
	})

	r.POST("/api/predict", func(c *gin.Context) {
		var request struct {
			Image string `json:"image" binding:"required"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			handleError(c, errors.NewValidationError(err.Error()))
			return
		}

		result, source := analysisService.Predict(c.Request.Context(), request.Image)
		c.Header("X-Data-Source", string(source))
		c.JSON(http.StatusOK, result)
	})

	r.POST("/api/analyze", func(c *gin.Context) {
		var request struct {
			Image string `json:"image" binding:"required"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			handleError(c, errors.NewValidationError(err.Error()))
			return
		}

		c.JSON(http.StatusOK, analysisService.Analyze(c.Request.Context(), request.Image))
	})

	r.GET("/api/treatments", func(c *gin.Context) {
		disease, ok := c.GetQuery("disease")
		if !ok {
			handleError(c, errors.NewValidationError("disease query parameter is required"))
			return
		}

		treatments, source := analysisService.Treatments(c.Request.Context(), disease)
		c.Header("X-Data-Source", string(source))
		c.JSON(http.StatusOK, treatments)
	})

	r.GET("/api/products", func(c *gin.Context) {
		disease, ok := c.GetQuery("disease")
		if !ok {
			handleError(c, errors.NewValidationError("disease query parameter is required"))
			return
		}

		products, source := analysisService.Products(c.Request.Context(), disease)
		c.Header("X-Data-Source", string(source))
		c.JSON(http.StatusOK, products)
	})

	r.GET("/api/tutorials", func(c *gin.Context) {
		disease, ok := c.GetQuery("disease")
		if !ok {
			handleError(c, errors.NewValidationError("disease query parameter is required"))
			return
		}

		tutorials, source := analysisService.Tutorials(c.Request.Context(), disease)
		c.Header("X-Data-Source", string(source))
		c.JSON(http.StatusOK, tutorials)
	})

	r.GET("/api/recent", func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "8"))
		if err != nil {
			handleError(c, errors.NewValidationError("limit must be an integer"))
			return
		}

		c.JSON(http.StatusOK, analysisService.Recent(c.Request.Context(), limit))
	})

	r.GET("/test", func(c *gin.Context) {
		report := analysisService.Health(
			c.Request.Context(),
			os.Getenv("DATABASE_URL") != "",
			os.Getenv("DATABASE_NAME") != "",
		)
		c.JSON(http.StatusOK, report)
	})

	return r
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	r := setupRouter()
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
