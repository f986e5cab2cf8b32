package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"jusfiscal/config"
	"jusfiscal/mail"
	"jusfiscal/models"
	"jusfiscal/providers/registry"
	"jusfiscal/services"
	"jusfiscal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	leadsCreatedCounter     prometheus.Counter
	contentGeneratedCounter prometheus.Counter
	publicationsCounter     *prometheus.CounterVec
)

func init() {
	leadsCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads added to the database.",
		},
	)
	contentGeneratedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "content_generated_total",
			Help: "Total number of content drafts generated.",
		},
	)
	publicationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publications_total",
			Help: "Total number of publication attempts by outcome.",
		},
		[]string{"outcome"},
	)
	prometheus.MustRegister(leadsCreatedCounter, contentGeneratedCounter, publicationsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	db.AutoMigrate(
		&models.Lead{}, &models.LeadInteraction{},
		&models.ContentTemplate{}, &models.ContentTopic{}, &models.GeneratedContent{},
		&models.PublicationChannel{}, &models.ScheduledPublication{}, &models.PublicationLog{},
	)

	// Seeding
	if err := services.SeedDefaults(db, logging); err != nil {
		logging.Warn("Failed to seed defaults", zap.Error(err))
	}

	// Setup Services
	registryFetcher := registry.NewFetcher(cfg, logging)
	mailSender := mail.NewSender(cfg, logging)
	leadService := services.NewLeadService(cfg, db, logging, registryFetcher)
	outreachService := services.NewOutreachService(cfg, db, logging, mailSender, leadService)
	contentService := services.NewContentService(cfg, db, logging)
	publicationService := services.NewPublicationService(cfg, db, logging)
	scheduler := services.NewScheduler(cfg, logging, publicationService, contentService)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "jusfiscal"})
	})

	// Setup Routes
	setupLeadRoutes(router, leadService, logging)
	setupOutreachRoutes(router, outreachService, logging)
	setupContentRoutes(router, contentService, db, logging)
	setupTemplateRoutes(router, db, logging)
	setupTopicRoutes(router, db, logging)
	setupChannelRoutes(router, db, logging)
	setupPublicationRoutes(router, publicationService, db, logging)
	setupSchedulerRoutes(router, scheduler, logging)
	setupMediaRoutes(router, cfg, logging)

	// Setup Scheduler
	if cfg.SchedulerAutostart {
		if err := scheduler.Start(); err != nil {
			logging.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupLeadRoutes(router *gin.Engine, leads *services.LeadService, log *zap.Logger) {
	rg := router.Group("/leads")

	rg.POST("/", func(c *gin.Context) {
		var lead models.Lead
		if err := c.ShouldBindJSON(&lead); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		result, err := leads.CreateLead(&lead)
		if err != nil {
			log.Error("Failed to create lead", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if !result.Success {
			c.JSON(http.StatusConflict, result)
			return
		}
		leadsCreatedCounter.Inc()
		c.JSON(http.StatusCreated, result)
	})

	rg.GET("/", func(c *gin.Context) {
		minScore, _ := strconv.Atoi(c.Query("min_score"))
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

		result, total, err := leads.ListLeads(services.LeadFilter{
			Status:   c.Query("status"),
			Sector:   c.Query("sector"),
			MinScore: minScore,
			Page:     page,
			PerPage:  perPage,
		})
		if err != nil {
			log.Error("Database query for leads failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"leads": result, "total": total, "page": page, "per_page": perPage})
	})

	rg.GET("/qualified", func(c *gin.Context) {
		minScore, _ := strconv.Atoi(c.DefaultQuery("min_score", "50"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		result, err := leads.QualifiedLeads(minScore, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/by-sector/:sector", func(c *gin.Context) {
		minScore, _ := strconv.Atoi(c.Query("min_score"))
		result, err := leads.LeadsBySector(c.Param("sector"), minScore)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/follow-up", func(c *gin.Context) {
		days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
		result, err := leads.FollowUpLeads(days)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/statistics", func(c *gin.Context) {
		stats, err := leads.Statistics()
		if err != nil {
			log.Error("Failed to compute lead statistics", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var lead models.Lead
		if err := leads.DB.First(&lead, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, lead)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
			return
		}
		var update services.LeadUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		result, err := leads.UpdateLead(uint(id), &update)
		if err != nil {
			log.Error("Failed to update lead", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if !result.Success {
			status := http.StatusBadRequest
			if result.Error == "lead not found" {
				status = http.StatusNotFound
			}
			c.JSON(status, result)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
			return
		}
		if err := leads.DeleteLead(uint(id)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "lead deleted"})
	})

	rg.POST("/import-cnpj", func(c *gin.Context) {
		var req struct {
			CNPJList []string `json:"cnpj_list" binding:"required"`
			Source   string   `json:"source"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, cnpj_list required"})
			return
		}
		if req.Source == "" {
			req.Source = "cnpj_import"
		}
		result := leads.ImportFromCNPJ(req.CNPJList, req.Source)
		leadsCreatedCounter.Add(float64(result.ImportedCount))
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/:id/interactions", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
			return
		}
		interactions, err := leads.Interactions(uint(id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, interactions)
	})

	rg.POST("/:id/interactions", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
			return
		}
		var input services.InteractionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, interaction_type required"})
			return
		}
		result, err := leads.RecordInteraction(uint(id), &input)
		if err != nil {
			log.Error("Failed to record interaction", zap.Uint64("lead_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if !result.Success {
			c.JSON(http.StatusNotFound, result)
			return
		}
		c.JSON(http.StatusCreated, result)
	})
}

func setupOutreachRoutes(router *gin.Engine, outreach *services.OutreachService, log *zap.Logger) {
	rg := router.Group("/outreach")

	rg.POST("/email/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
			return
		}
		result, err := outreach.SendInitialEmail(uint(id), c.Query("template_type"))
		if err != nil {
			log.Error("Failed to send outreach email", zap.Uint64("lead_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if !result.Success {
			c.JSON(http.StatusUnprocessableEntity, result)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.POST("/linkedin/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
			return
		}
		result, err := outreach.SendLinkedInMessage(uint(id), c.DefaultQuery("message_type", "initial"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if !result.Success {
			c.JSON(http.StatusUnprocessableEntity, result)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.POST("/instagram/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
			return
		}
		result, err := outreach.SendInstagramDM(uint(id), c.DefaultQuery("message_type", "initial"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if !result.Success {
			c.JSON(http.StatusUnprocessableEntity, result)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.POST("/campaign", func(c *gin.Context) {
		var input services.CampaignInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		result, err := outreach.RunCampaign(input)
		if err != nil {
			log.Error("Outreach campaign failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.POST("/follow-up", func(c *gin.Context) {
		var req struct {
			DaysSinceContact int `json:"days_since_contact"`
		}
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		result, err := outreach.RunFollowUpCampaign(req.DaysSinceContact)
		if err != nil {
			log.Error("Follow-up campaign failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

func setupContentRoutes(router *gin.Engine, content *services.ContentService, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/content")

	rg.POST("/generate", func(c *gin.Context) {
		var input services.GenerateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, content_type and topic required"})
			return
		}
		result, err := content.GenerateContent(c.Request.Context(), input)
		if err != nil {
			log.Error("Content generation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if !result.Success {
			c.JSON(http.StatusBadGateway, result)
			return
		}
		contentGeneratedCounter.Inc()
		c.JSON(http.StatusCreated, result)
	})

	rg.POST("/ideas", func(c *gin.Context) {
		var req struct {
			Count int `json:"count"`
		}
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		ideas, err := content.GenerateIdeas(c.Request.Context(), req.Count)
		if err != nil {
			log.Error("Idea generation failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "idea generation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ideas": ideas})
	})

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.GeneratedContent{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if contentType := c.Query("content_type"); contentType != "" {
			query = query.Where("content_type = ?", contentType)
		}
		if sector := c.Query("target_sector"); sector != "" {
			query = query.Where("target_sector = ?", sector)
		}
		var items []models.GeneratedContent
		if err := query.Order("created_at desc").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, items)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var item models.GeneratedContent
		if err := db.First(&item, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, item)
	})

	rg.PUT("/:id/status", func(c *gin.Context) {
		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, status required"})
			return
		}
		var item models.GeneratedContent
		if err := db.First(&item, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if err := db.Model(&item).Update("status", req.Status).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update content"})
			return
		}
		c.JSON(http.StatusOK, item)
	})
}

func setupTemplateRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/templates")

	rg.POST("/", func(c *gin.Context) {
		var template models.ContentTemplate
		if err := c.ShouldBindJSON(&template); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := db.Create(&template).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create template"})
			return
		}
		c.JSON(http.StatusCreated, template)
	})

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.ContentTemplate{})
		if contentType := c.Query("content_type"); contentType != "" {
			query = query.Where("content_type = ?", contentType)
		}
		var templates []models.ContentTemplate
		if err := query.Find(&templates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, templates)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		var template models.ContentTemplate
		if err := db.First(&template, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if err := c.ShouldBindJSON(&template); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := db.Save(&template).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update template"})
			return
		}
		c.JSON(http.StatusOK, template)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.ContentTemplate{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete template"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "template deleted"})
	})
}

func setupTopicRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/topics")

	rg.POST("/", func(c *gin.Context) {
		var topic models.ContentTopic
		if err := c.ShouldBindJSON(&topic); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := db.Create(&topic).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create topic"})
			return
		}
		c.JSON(http.StatusCreated, topic)
	})

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.ContentTopic{})
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}
		var topics []models.ContentTopic
		if err := query.Order("priority desc").Find(&topics).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, topics)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.ContentTopic{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete topic"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "topic deleted"})
	})
}

func setupChannelRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/channels")

	rg.POST("/", func(c *gin.Context) {
		var req struct {
			Name        string         `json:"name" binding:"required"`
			ChannelType string         `json:"channel_type" binding:"required"`
			APIConfig   datatypes.JSON `json:"api_config"`
			IsActive    *bool          `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request, name and channel_type required"})
			return
		}
		if !models.ValidChannelType(req.ChannelType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid channel_type: %s", req.ChannelType)})
			return
		}
		channel := models.PublicationChannel{
			Name:        req.Name,
			ChannelType: req.ChannelType,
			APIConfig:   req.APIConfig,
			IsActive:    req.IsActive == nil || *req.IsActive,
		}
		if err := db.Create(&channel).Error; err != nil {
			log.Error("Failed to create channel", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create channel"})
			return
		}
		c.JSON(http.StatusCreated, channel)
	})

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.PublicationChannel{})
		if c.Query("active") == "true" {
			query = query.Where("is_active = ?", true)
		}
		var channels []models.PublicationChannel
		if err := query.Find(&channels).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, channels)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		var channel models.PublicationChannel
		if err := db.First(&channel, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if err := c.ShouldBindJSON(&channel); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := db.Save(&channel).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update channel"})
			return
		}
		c.JSON(http.StatusOK, channel)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.PublicationChannel{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete channel"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "channel deleted"})
	})
}

func setupPublicationRoutes(router *gin.Engine, publications *services.PublicationService, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/publications")

	rg.POST("/publish", func(c *gin.Context) {
		var req struct {
			ContentID uint `json:"content_id" binding:"required"`
			ChannelID uint `json:"channel_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, content_id and channel_id required"})
			return
		}
		result, err := publications.Publish(req.ContentID, req.ChannelID)
		if err != nil {
			log.Error("Publish failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if !result.Success {
			publicationsCounter.WithLabelValues("failure").Inc()
			c.JSON(http.StatusUnprocessableEntity, result)
			return
		}
		publicationsCounter.WithLabelValues("success").Inc()
		c.JSON(http.StatusOK, result)
	})

	rg.POST("/schedule", func(c *gin.Context) {
		var req struct {
			ContentID     uint      `json:"content_id" binding:"required"`
			ChannelID     uint      `json:"channel_id" binding:"required"`
			ScheduledTime time.Time `json:"scheduled_time" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, content_id, channel_id and scheduled_time required"})
			return
		}
		scheduled, err := publications.SchedulePublication(req.ContentID, req.ChannelID, req.ScheduledTime)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "content or channel not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusCreated, scheduled)
	})

	rg.GET("/scheduled", func(c *gin.Context) {
		query := db.Model(&models.ScheduledPublication{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		var scheduled []models.ScheduledPublication
		if err := query.Order("scheduled_time asc").Find(&scheduled).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, scheduled)
	})

	rg.POST("/process-scheduled", func(c *gin.Context) {
		result, err := publications.ProcessScheduledPublications()
		if err != nil {
			log.Error("Scheduled publication sweep failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		publicationsCounter.WithLabelValues("success").Add(float64(result.Published))
		publicationsCounter.WithLabelValues("failure").Add(float64(result.Failed))
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/stats", func(c *gin.Context) {
		days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
		stats, err := publications.Statistics(days)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	rg.GET("/logs", func(c *gin.Context) {
		query := db.Model(&models.PublicationLog{})
		if contentID := c.Query("content_id"); contentID != "" {
			query = query.Where("content_id = ?", contentID)
		}
		var logs []models.PublicationLog
		if err := query.Order("published_at desc").Limit(100).Find(&logs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, logs)
	})
}

func setupSchedulerRoutes(router *gin.Engine, scheduler *services.Scheduler, log *zap.Logger) {
	rg := router.Group("/scheduler")

	rg.POST("/start", func(c *gin.Context) {
		if err := scheduler.Start(); err != nil {
			log.Error("Scheduler start failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, scheduler.Status())
	})

	rg.POST("/stop", func(c *gin.Context) {
		scheduler.Stop()
		c.JSON(http.StatusOK, scheduler.Status())
	})

	rg.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, scheduler.Status())
	})

	rg.POST("/schedule-content", func(c *gin.Context) {
		var req struct {
			At         time.Time `json:"at" binding:"required"`
			TopicCount int       `json:"topic_count"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, at required"})
			return
		}
		if err := scheduler.ScheduleContentGeneration(req.At, req.TopicCount); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "content generation scheduled", "at": req.At})
	})
}

func setupMediaRoutes(router *gin.Engine, cfg *config.Config, log *zap.Logger) {
	rg := router.Group("/media")

	rg.POST("/upload", func(c *gin.Context) {
		if !cfg.MediaEnabled() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage is not configured"})
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
			return
		}
		defer src.Close()
		data, err := io.ReadAll(src)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
			return
		}

		client, err := storage.NewS3Client(cfg)
		if err != nil {
			log.Error("S3 client creation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
			return
		}

		key := fmt.Sprintf("media/%d_%s", time.Now().Unix(), file.Filename)
		contentType := file.Header.Get("Content-Type")
		url, err := storage.UploadFile(client, cfg.MediaS3Bucket, key, data, contentType, cfg)
		if err != nil {
			log.Error("Media upload failed", zap.String("key", key), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}

		log.Info("Media uploaded", zap.String("key", key))
		c.JSON(http.StatusCreated, gin.H{"url": url, "key": key})
	})
}
