package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/config"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/outbox"
	"skripta.hr/forum/internal/server"
	"skripta.hr/forum/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
		if err := seedCategories(db); err != nil {
			log.Fatalf("failed to seed categories: %v", err)
		}
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.NewServer(cfg, db, redisClient)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down")
		srv.Shutdown()
		os.Exit(0)
	}()

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, running without redis (rate limiting and live notifications disabled)")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}

	return redis.NewClient(opts)
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.Category{},
		&entity.Tag{},
		&entity.Topic{},
		&entity.TopicDraft{},
		&entity.Reply{},
		&entity.Vote{},
		&entity.Attachment{},
		&entity.Reaction{},
		&entity.Bookmark{},
		&entity.TopicView{},
		&entity.Poll{},
		&entity.PollOption{},
		&entity.PollVote{},
		&entity.Notification{},
		&entity.AchievementAward{},
		&outbox.Event{},
	)
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@skripta.hr").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Username:     "admin",
		Email:        "admin@skripta.hr",
		PasswordHash: string(hashed),
		Role:         entity.RoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	profile := entity.Profile{UserID: admin.ID}
	return db.Create(&profile).Error
}

func seedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []entity.Category{
		{Name: "Opća rasprava", Slug: "opca-rasprava", Description: "Rasprave o svemu i svačemu", OrderIndex: 0},
		{Name: "Pomoć s gradivom", Slug: "pomoc-s-gradivom", Description: "Pitanja i pomoć oko gradiva", OrderIndex: 1},
		{Name: "Ispiti i kolokviji", Slug: "ispiti-i-kolokviji", Description: "Iskustva i priprema za ispite", OrderIndex: 2},
		{Name: "Skripte i materijali", Slug: "skripte-i-materijali", Description: "Dijeljenje skripti i bilješki", OrderIndex: 3},
	}

	for _, category := range categories {
		if err := db.Create(&category).Error; err != nil {
			return err
		}
	}

	return nil
}
