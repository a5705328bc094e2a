package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/blogsphere/internal/blogservice"
	"github.com/sushihentaime/blogsphere/internal/commentservice"
	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/followservice"
	"github.com/sushihentaime/blogsphere/internal/likeservice"
	"github.com/sushihentaime/blogsphere/internal/mailservice"
	"github.com/sushihentaime/blogsphere/internal/mediaservice"
	"github.com/sushihentaime/blogsphere/internal/tokenservice"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

type application struct {
	config         *Config
	logger         *slog.Logger
	metrics        *metrics
	userService    *userservice.UserService
	blogService    *blogservice.BlogService
	commentService *commentservice.CommentService
	likeService    *likeservice.LikeService
	followService  *followservice.FollowService
	mailService    *mailservice.MailService
	broker         *common.MessageBroker
}

func newLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func main() {
	configPath := flag.String("config", ".env", "path to the env configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)

	dsn := common.DSN(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name)

	db, err := common.NewDB(dsn, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.MaxIdleTime)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	if cfg.DB.AutoMigrate {
		m, err := common.Migrate(cfg.DB.Migrations, dsn)
		if err != nil {
			logger.Error("failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		m.Close()
		logger.Info("database migrations applied")
	}

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupUserExchange(broker)
	if err != nil {
		logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mailService, err := mailservice.NewMailService(broker, mailservice.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.User,
		Password: cfg.Mail.Password,
		Sender:   cfg.Mail.Sender,
	}, logger)
	if err != nil {
		logger.Error("failed to create the mail service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer mailService.Close()

	host, err := mediaservice.NewCloudinaryHost(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		logger.Error("failed to configure the image host", slog.String("error", err.Error()))
		os.Exit(1)
	}
	media := mediaservice.NewMediaService(host, cfg.Cloudinary.Folder, logger)

	tokens := tokenservice.NewTokenService(tokenservice.Config{
		AccessSecret:       cfg.JWT.AccessSecret,
		AccessExpiry:       cfg.JWT.AccessExpiry,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		RefreshExpiry:      cfg.JWT.RefreshExpiry,
		VerificationSecret: cfg.JWT.VerificationSecret,
		VerificationExpiry: cfg.JWT.VerificationExpiry,
	})

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: newMetrics(),
		userService: userservice.NewUserService(db, broker, cache, tokens, media, logger, userservice.Config{
			BaseURL:   cfg.BaseURL,
			OTPExpiry: cfg.JWT.OTPExpiry,
		}),
		blogService:    blogservice.NewBlogService(db, cache, media, logger),
		commentService: commentservice.NewCommentService(db),
		likeService:    likeservice.NewLikeService(db),
		followService:  followservice.NewFollowService(db),
		mailService:    mailService,
		broker:         broker,
	}

	app.mailService.SendVerificationEmails()
	app.mailService.SendOTPEmails()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
