package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mzalewski-wsm/studium/internal/api"
	"github.com/mzalewski-wsm/studium/internal/config"
	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/mailer"
	"github.com/mzalewski-wsm/studium/internal/server"
	"github.com/mzalewski-wsm/studium/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	mongoURI       string
	databaseName   string
	signingKey     string
	storagePath    string
	sendgridKey    string
	fromEmail      string
	allowedOrigins stringSliceFlag
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// flags override the environment, the environment overrides .env
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal("load .env:", err)
	}

	flag.StringVar(&addr, "addr", envOr("STUDIUM_ADDR", "localhost:8000"), "server address")
	flag.StringVar(&mongoURI, "mongo-uri", envOr("STUDIUM_MONGO_URI", "mongodb://localhost:27017"), "mongodb connection string")
	flag.StringVar(&databaseName, "db-name", envOr("STUDIUM_DB_NAME", "studium"), "database name")
	flag.StringVar(&signingKey, "signing-key", os.Getenv("STUDIUM_SIGNING_KEY"), "base64 encoded signing key")
	flag.StringVar(&storagePath, "storage-path", envOr("STUDIUM_STORAGE_PATH", "./uploads"), "directory for profile pictures")
	flag.StringVar(&sendgridKey, "sendgrid-key", os.Getenv("STUDIUM_SENDGRID_KEY"), "sendgrid API key, mail is logged when unset")
	flag.StringVar(&fromEmail, "from-email", os.Getenv("STUDIUM_FROM_EMAIL"), "sender address for outgoing mail")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[studium] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, mongoURI, databaseName, signingKey, allowedOrigins, storagePath, sendgridKey, fromEmail)
	if err != nil {
		logger.Fatal("config:", err)
	}

	if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
		logger.Fatal("create storage path:", err)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.NewMongoStudiumRepository(connectCtx, cfg.MongoURI, cfg.DatabaseName)
	cancelConnect()
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Println("db close:", err)
		}
	}()

	var m mailer.Mailer
	if cfg.SendgridKey != "" {
		m = mailer.NewSendgridMailer(cfg.SendgridKey, cfg.FromEmail)
	} else {
		m = mailer.NewDummyMailer(logger)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	rtcServer, err := server.NewRtcServer(logger, db, statsUpdater)
	if err != nil {
		logger.Fatal("new rtc server:", err)
	}

	srv := api.NewStudiumApp(mux, logger, rtcServer, db, m, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down rtc server...")
	if err := rtcServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("rtc server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
