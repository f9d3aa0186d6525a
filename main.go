package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/seo-insight/backend/analyzer"
	"github.com/seo-insight/backend/config"
	"github.com/seo-insight/backend/grading"
	"github.com/seo-insight/backend/llm"
	"github.com/seo-insight/backend/logging"
	"github.com/seo-insight/backend/middleware"
	"github.com/seo-insight/backend/stats"
	"github.com/seo-insight/backend/store"
)

func setupGinMode() {
	mode := config.Get("GIN_MODE", gin.ReleaseMode)
	gin.SetMode(mode)
}

func main() {
	config.LoadEnv()
	setupGinMode()

	log, err := logging.New(config.Get("APP_ENV", "development"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Text generation is optional: without it readability and keyword
	// extraction degrade to their documented fallbacks.
	var textgen llm.TextGenerator
	if client, err := llm.NewClient(log); err != nil {
		log.Warn("text generation disabled", "reason", err.Error())
	} else {
		textgen = client
	}

	// Persistence is optional too: without Postgres nothing is memoized
	// across process restarts.
	var resultStore analyzer.ResultStore
	var analysisRepo store.AnalysisRepo
	if config.Get("POSTGRES_HOST", "") != "" {
		pg, err := store.NewPostgresService(log)
		if err != nil {
			log.Fatal("postgres connection failed", "error", err)
		}
		if err := pg.AutoMigrateAll(); err != nil {
			log.Fatal("postgres migration failed", "error", err)
		}

		var cache *store.RedisCache
		if config.Get("REDIS_ADDR", "") != "" {
			cache, err = store.NewRedisCache(log)
			if err != nil {
				log.Warn("redis cache disabled", "error", err)
			} else {
				defer cache.Close()
			}
		}

		analysisRepo = store.NewAnalysisRepo(pg.DB(), cache, log)
		resultStore = analysisRepo
	} else {
		log.Warn("POSTGRES_HOST not set; analysis memoization disabled")
	}

	statsStorage, err := stats.NewStorage(config.Get("DATA_DIR", "./data"))
	if err != nil {
		log.Fatal("stats storage init failed", "error", err)
	}
	defer statsStorage.Shutdown()

	contentAnalyzer := analyzer.New(log, textgen, resultStore, statsStorage)
	rateLimiter := middleware.NewRateLimiter(2, 5)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorHandler(log))
	r.Use(rateLimiter.RateLimit())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/analyze", analyzeContent(contentAnalyzer))
		api.POST("/grade", gradeScore())

		api.GET("/statistics", func(c *gin.Context) {
			c.JSON(http.StatusOK, statsStorage.GetCurrentStats())
		})

		if analysisRepo != nil {
			api.GET("/analyses", recentAnalyses(analysisRepo))
		}
	}

	port := config.Get("PORT", "8082")
	log.Info("server starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("server failed", "error", err)
	}
}

func analyzeContent(a *analyzer.Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Content  string   `json:"content" binding:"required"`
			Title    string   `json:"title"`
			Keywords []string `json:"keywords"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "content is required",
			})
			return
		}

		result := a.AnalyzeContent(c.Request.Context(), request.Content, request.Title, request.Keywords)
		if result == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "analysis unavailable, try again later",
			})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func recentAnalyses(repo store.AnalysisRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		rows, err := repo.Latest(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to list analyses",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"analyses": rows})
	}
}

func gradeScore() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Score           *float64            `json:"score" binding:"required"`
			IssueCounts     grading.IssueCounts `json:"issueCounts"`
			IndustryAverage *float64            `json:"industryAverage"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "score is required",
			})
			return
		}

		weighted := grading.WeightedScore(*request.Score, request.IssueCounts, grading.WeightedScoreOptions{})
		issueTotal := request.IssueCounts.Critical + request.IssueCounts.High +
			request.IssueCounts.Medium + request.IssueCounts.Low + request.IssueCounts.Info

		response := gin.H{
			"score":                *request.Score,
			"weightedScore":        weighted,
			"grade":                grading.GetGrade(weighted),
			"improvementPotential": grading.ImprovementPotential(weighted, issueTotal, grading.DefaultMaxIssueImpact),
		}
		if request.IndustryAverage != nil {
			response["industryComparison"] = grading.CompareToIndustryAverage(weighted, *request.IndustryAverage)
		}

		c.JSON(http.StatusOK, response)
	}
}
