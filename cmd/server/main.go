package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/FraN-onLine/ccis-connect/internal/config"
	"github.com/FraN-onLine/ccis-connect/internal/database"
	"github.com/FraN-onLine/ccis-connect/internal/handler"
	"github.com/FraN-onLine/ccis-connect/internal/ledger"
	"github.com/FraN-onLine/ccis-connect/internal/middleware"
	"github.com/FraN-onLine/ccis-connect/internal/queue"
	"github.com/FraN-onLine/ccis-connect/internal/repository"
	"github.com/FraN-onLine/ccis-connect/internal/router"
	"github.com/FraN-onLine/ccis-connect/internal/snapshot"
	"github.com/FraN-onLine/ccis-connect/internal/validation"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	// MySQL backs the accounts store only. The ledger itself is in memory.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Redis serves two roles: ledger snapshots and the rate limiter. A nil
	// client disables both rather than blocking startup.
	rdb := config.NewRedisClient()
	store := snapshot.NewStore(rdb)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	led := restoreLedger(ctx, store, cfg.RoomReleaseTTL)
	cancel()
	defer led.Close()
	led.SetCommitHook(store.CommitHook())

	// Decision log consumer. Runs its own reconnect loop for the life of
	// the process.
	go func() {
		if err := queue.StartDecisionConsumer(); err != nil {
			log.Printf("decision consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Validator = validation.New()
	if rlCfg := config.LoadRateLimitConfig(); rlCfg.Enabled && rdb != nil {
		e.Use(middleware.NewTokenBucket(rlCfg, rdb))
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	router.RegisterRoutes(e, handler.NewBrowseHandler(led))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterMember(e, handler.NewRequestHandler(led), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(led), cfg.JWTSecret)
	router.RegisterRooms(e, handler.NewRoomHandler(led), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// restoreLedger rebuilds the ledger from the latest Redis snapshot, falling
// back to the default seed data on a cold start.
func restoreLedger(ctx context.Context, store *snapshot.Store, releaseTTL time.Duration) *ledger.Ledger {
	if snap, ok := store.Load(ctx); ok {
		log.Printf("ledger: restored snapshot (%d rooms, %d equipment types, %d requests)",
			len(snap.Rooms), len(snap.Equipment), len(snap.Requests))
		return ledger.FromSnapshot(snap, releaseTTL)
	}
	log.Printf("ledger: no snapshot found, seeding defaults")
	return ledger.New(ledger.DefaultSeed(), releaseTTL)
}
