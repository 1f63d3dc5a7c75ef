package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"skripta.hr/forum/internal/config"
	"skripta.hr/forum/internal/middleware"
	"skripta.hr/forum/internal/outbox"
	"skripta.hr/forum/pkg/storage"

	achievementHttp "skripta.hr/forum/internal/modules/achievement/delivery/http"
	achievementRepo "skripta.hr/forum/internal/modules/achievement/repository"
	achievementService "skripta.hr/forum/internal/modules/achievement/service"

	attachmentHttp "skripta.hr/forum/internal/modules/attachment/delivery/http"
	attachmentRepo "skripta.hr/forum/internal/modules/attachment/repository"
	attachmentService "skripta.hr/forum/internal/modules/attachment/service"

	bookmarkHttp "skripta.hr/forum/internal/modules/bookmark/delivery/http"
	bookmarkRepo "skripta.hr/forum/internal/modules/bookmark/repository"
	bookmarkService "skripta.hr/forum/internal/modules/bookmark/service"

	categoryHttp "skripta.hr/forum/internal/modules/category/delivery/http"
	categoryRepo "skripta.hr/forum/internal/modules/category/repository"
	categoryService "skripta.hr/forum/internal/modules/category/service"

	draftHttp "skripta.hr/forum/internal/modules/draft/delivery/http"
	draftRepo "skripta.hr/forum/internal/modules/draft/repository"
	draftService "skripta.hr/forum/internal/modules/draft/service"

	moderationHttp "skripta.hr/forum/internal/modules/moderation/delivery/http"
	moderationService "skripta.hr/forum/internal/modules/moderation/service"

	notiHttp "skripta.hr/forum/internal/modules/notification/delivery/http"
	notifRepo "skripta.hr/forum/internal/modules/notification/repository"
	notifService "skripta.hr/forum/internal/modules/notification/service"

	pollHttp "skripta.hr/forum/internal/modules/poll/delivery/http"
	pollRepo "skripta.hr/forum/internal/modules/poll/repository"
	pollService "skripta.hr/forum/internal/modules/poll/service"

	reactionHttp "skripta.hr/forum/internal/modules/reaction/delivery/http"
	reactionRepo "skripta.hr/forum/internal/modules/reaction/repository"
	reactionService "skripta.hr/forum/internal/modules/reaction/service"

	replyHttp "skripta.hr/forum/internal/modules/reply/delivery/http"
	replyRepo "skripta.hr/forum/internal/modules/reply/repository"
	replyService "skripta.hr/forum/internal/modules/reply/service"

	searchHttp "skripta.hr/forum/internal/modules/search/delivery/http"
	searchService "skripta.hr/forum/internal/modules/search/service"

	topicHttp "skripta.hr/forum/internal/modules/topic/delivery/http"
	topicRepo "skripta.hr/forum/internal/modules/topic/repository"
	topicService "skripta.hr/forum/internal/modules/topic/service"

	"skripta.hr/forum/internal/modules/topicpage"

	userHttp "skripta.hr/forum/internal/modules/user/delivery/http"
	userRepo "skripta.hr/forum/internal/modules/user/repository"
	userService "skripta.hr/forum/internal/modules/user/service"

	viewService "skripta.hr/forum/internal/modules/view/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine       *gin.Engine
	db           *gorm.DB
	redisClient  *redis.Client
	outboxWorker *outbox.Worker
	cancel       context.CancelFunc
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)

	fileStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("cloudinary storage unavailable, uploads disabled: %v", err)
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		meiliClient = meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}
	searchSvc := searchService.NewSearchService(meiliClient)
	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	outboxRepo := outbox.NewRepository(db)

	authSvc := userService.NewAuthService(users)
	authHandler := userHttp.NewAuthHandler(authSvc)

	categories := categoryRepo.NewCategoryRepository(db)
	categorySvc := categoryService.NewCategoryService(categories)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	attachments := attachmentRepo.NewAttachmentRepository(db)
	attachmentSvc := attachmentService.NewAttachmentService(attachments, fileStorage)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	notifications := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notifications, users, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	topics := topicRepo.NewTopicRepository(db)
	replies := replyRepo.NewReplyRepository(db)

	reactions := reactionRepo.NewReactionRepository(db)
	reactionSvc := reactionService.NewReactionService(reactions, redisClient, outboxRepo)
	reactionHandler := reactionHttp.NewReactionHandler(reactionSvc)

	drafts := draftRepo.NewDraftRepository(db)
	draftSvc := draftService.NewDraftService(drafts)
	draftHandler := draftHttp.NewDraftHandler(draftSvc)

	polls := pollRepo.NewPollRepository(db)
	pollSvc := pollService.NewPollService(polls)
	pollHandler := pollHttp.NewPollHandler(pollSvc)

	bookmarks := bookmarkRepo.NewBookmarkRepository(db)
	bookmarkSvc := bookmarkService.NewBookmarkService(bookmarks)
	bookmarkHandler := bookmarkHttp.NewBookmarkHandler(bookmarkSvc)

	viewSvc := viewService.NewViewService(db, redisClient, topics, outboxRepo)

	topicSvc := topicService.NewTopicService(topics, categories, drafts, attachmentSvc, pollSvc, outboxRepo, redisClient, cfg.RateLimitTopic)
	pageLoader := topicpage.NewLoader(topics, replies, attachments, reactions, bookmarks, pollSvc, viewSvc)
	topicHandler := topicHttp.NewTopicHandler(topicSvc, pageLoader)

	replySvc := replyService.NewReplyService(replies, topics, attachmentSvc, outboxRepo, redisClient, cfg.RateLimitReply)
	replyHandler := replyHttp.NewReplyHandler(replySvc)

	achievements := achievementRepo.NewAchievementRepository(db)
	achievementSvc := achievementService.NewAchievementService(achievements, topics, replies, notificationSvc)
	achievementHandler := achievementHttp.NewAchievementHandler(achievementSvc, users)

	moderationSvc := moderationService.NewModerationService(users, notificationSvc)
	moderationHandler := moderationHttp.NewModerationHandler(moderationSvc)

	// Background workers share one cancellable context.
	ctx, cancel := context.WithCancel(context.Background())

	worker := outbox.NewWorker(outboxRepo, outboxHandlers(
		notificationSvc, achievementSvc, viewSvc, searchSvc, topics, replies,
	), cfg.OutboxWorkers)
	worker.Start(ctx)

	if redisClient != nil {
		go viewSvc.StartFlusher(ctx)
	}

	// Orphan attachment cleanup, twice a day.
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed, err := attachmentSvc.CleanupOrphans(context.Background()); err != nil {
					log.Printf("orphan attachment cleanup failed: %v", err)
				} else if removed > 0 {
					log.Printf("orphan attachment cleanup removed %d files", removed)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/check-email", authHandler.CheckEmail)
	}

	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/categories", categoryHandler.GetAllCategories)
		public.GET("/tags", categoryHandler.GetAllTags)
		public.GET("/topics", topicHandler.GetTopics)
		public.GET("/search", searchHandler.Search)
		public.GET("/topics/slug/:slug", topicHandler.GetTopicPage)
		public.GET("/profile/:username", authHandler.GetProfileByUsername)
		public.GET("/profile/:username/achievements", achievementHandler.ListByUsername)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/profile/me", authHandler.GetCurrentProfile)
		protected.PUT("/profile", authHandler.UpdateProfile)

		protected.GET("/drafts", draftHandler.ListDrafts)
		protected.GET("/drafts/:id", draftHandler.GetDraft)
		protected.PUT("/drafts", draftHandler.SaveDraft)
		protected.DELETE("/drafts/:id", draftHandler.DeleteDraft)

		protected.GET("/bookmarks", bookmarkHandler.List)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		protected.DELETE("/notifications/:id", notificationHandler.Delete)
		protected.GET("/notifications/ws", notificationHandler.Stream)

		// Write routes gate out banned and timed-out users and carry the
		// global cooldown.
		writes := protected.Group("")
		writes.Use(authMiddleware.BlockSuspended())
		writes.Use(middleware.GlobalRateLimit(redisClient, cfg.RateLimitGlobal))
		{
			writes.POST("/topics", topicHandler.CreateTopic)
			writes.PUT("/topics/:id", topicHandler.UpdateTopic)
			writes.DELETE("/topics/:id", topicHandler.DeleteTopic)
			writes.POST("/topics/:id/replies", replyHandler.CreateReply)
			writes.POST("/topics/:id/reactions", reactionHandler.ToggleTopicReaction)
			writes.POST("/topics/:id/bookmark", bookmarkHandler.Toggle)

			writes.PUT("/replies/:id", replyHandler.UpdateReply)
			writes.DELETE("/replies/:id", replyHandler.DeleteReply)
			writes.POST("/replies/:id/solution", replyHandler.MarkSolution)
			writes.DELETE("/replies/:id/solution", replyHandler.UnmarkSolution)
			writes.POST("/replies/:id/votes", replyHandler.Vote)
			writes.POST("/replies/:id/reactions", reactionHandler.ToggleReplyReaction)

			writes.POST("/polls/:id/votes", pollHandler.Vote)
			writes.DELETE("/polls/:id/votes", pollHandler.RemoveVote)

			writes.POST("/upload", attachmentHandler.Upload)
			writes.DELETE("/attachments/:id", attachmentHandler.Delete)
		}

		// Admin routes
		admin := protected.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.POST("/categories", categoryHandler.CreateCategory)
			admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)
			admin.POST("/tags", categoryHandler.CreateTag)

			admin.PUT("/topics/:id/pin", topicHandler.SetPinned)
			admin.PUT("/topics/:id/lock", topicHandler.SetLocked)

			admin.GET("/stats", func(c *gin.Context) {
				ctx := c.Request.Context()
				userCount, _ := users.Count(ctx)
				pending, _ := outboxRepo.CountByStatus(ctx, outbox.StatusPending)
				retrying, _ := outboxRepo.CountByStatus(ctx, outbox.StatusRetry)
				dead, _ := outboxRepo.CountByStatus(ctx, outbox.StatusDead)
				c.JSON(http.StatusOK, gin.H{
					"users": userCount,
					"outbox": gin.H{
						"pending": pending,
						"retry":   retrying,
						"dead":    dead,
					},
				})
			})

			admin.GET("/users", moderationHandler.ListUsers)
			admin.PUT("/users/:id/role", moderationHandler.SetRole)
			admin.POST("/users/:id/ban", moderationHandler.Ban)
			admin.DELETE("/users/:id/ban", moderationHandler.Unban)
			admin.POST("/users/:id/warn", moderationHandler.Warn)
			admin.POST("/users/:id/timeout", moderationHandler.Timeout)
			admin.DELETE("/users/:id/timeout", moderationHandler.RemoveTimeout)
		}
	}

	return &Server{
		engine:       router,
		db:           db,
		redisClient:  redisClient,
		outboxWorker: worker,
		cancel:       cancel,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Shutdown stops the background workers.
func (s *Server) Shutdown() {
	s.cancel()
	s.outboxWorker.Stop()
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
