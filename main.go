package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"Courtside/config"
	_ "Courtside/config/swagger"
	"Courtside/middleware"
	"Courtside/routes"
	"Courtside/services/clubs"
	"Courtside/services/friends"
	"Courtside/services/games"
	"Courtside/services/notify"
	"Courtside/services/redis"
	"Courtside/services/socket_io"
	"Courtside/services/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @title Courtside API
// @version 1.0
// @description Gin-Gonic server for the Courtside court booking API
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	log.Println("Setting up server...")
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if settings.Prod {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	st, cleanup, err := openStore(ctx, settings)
	if err != nil {
		log.Fatalf("Error opening storage: %v", err)
	}

	var bus notify.Bus
	redisClient, err := config.ConnectRedis(settings.RedisURL)
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	if redisClient != nil {
		log.Println("Connection to Redis successful")
		cleanup = append(cleanup, func() { redis.CloseRedis(redisClient) })
		bus = redisClient
	} else {
		log.Println("REDIS_URL not set, game events stay in this process")
		bus = notify.NewLocalBus()
	}

	secret := []byte(settings.Key)
	if len(secret) == 0 {
		log.Println("[CONFIG] KEY not set, using a random key: sessions and tokens won't survive a restart")
		secret = []byte(uuid.NewString())
	}

	gameService := games.NewService(st, bus)
	friendService := friends.NewService(st)

	r := gin.Default()

	middleware.SetUpMiddleware(r, secret, settings.UseHTTPS)

	routes.SetupRoutes(r, routes.Deps{
		Store:    st,
		Games:    gameService,
		Friends:  friendService,
		Secret:   secret,
		TokenTTL: settings.JWTTTL,
	})

	sio := &socket_io.MySocketServer{}
	if err := sio.Start(ctx, r, socket_io.Deps{
		Store:  st,
		Games:  gameService,
		Bus:    bus,
		Secret: secret,
		Debug:  !settings.Prod,
	}); err != nil {
		log.Fatalf("Error starting socket server: %v", err)
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		sio.Close()
		for _, fn := range cleanup {
			fn()
		}
		os.Exit(0)
	}()

	// Configure port
	port := settings.ListenPort()
	log.Printf("Server starting on port %s", port)
	if settings.UseHTTPS {
		if err := r.RunTLS(":"+port, settings.TLSCertFile, settings.TLSKeyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
}

// openStore connects the configured storage. The in-memory store starts with
// the demo club so games can be created without a database.
func openStore(ctx context.Context, settings config.Settings) (store.Store, []func(), error) {
	if settings.Storage == config.StorageMemory {
		log.Println("Using in-memory storage")
		st := store.NewMemoryStore()
		if err := clubs.Seed(ctx, st, clubs.Defaults()); err != nil {
			return nil, nil, fmt.Errorf("seed clubs: %w", err)
		}
		return st, nil, nil
	}

	gormDB, err := config.ConnectGORM(settings.Postgres, settings.VerbosePostgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if settings.MigratePostgres {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Println("Database migrated successfully")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("read GORM PostgreSQL instance: %w", err)
	}
	return store.NewGormStore(gormDB), []func(){func() { sqlDB.Close() }}, nil
}
