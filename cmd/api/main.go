package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawpark.app/internal/cache"
	"pawpark.app/internal/docstore"
	"pawpark.app/internal/httpapi"
	"pawpark.app/internal/identity"
	"pawpark.app/internal/obs"
	"pawpark.app/internal/social"
)

var version = "0.3.0"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("PAWPARK_COMMIT"))

	// Document store: postgres when a DSN is configured, in-memory otherwise.
	var store docstore.Store
	var pg *docstore.PG
	if dsn := os.Getenv("PAWPARK_PG_DSN"); dsn != "" {
		var err error
		pg, err = docstore.OpenPG(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		store = pg
	} else {
		log.Println("PAWPARK_PG_DSN not set, using in-memory store")
		store = docstore.NewMemory()
	}

	secret := os.Getenv("PAWPARK_TOKEN_SECRET")
	if secret == "" {
		log.Fatal("PAWPARK_TOKEN_SECRET is required")
	}
	verifier, err := identity.NewVerifier(secret)
	if err != nil {
		log.Fatalf("verifier: %v", err)
	}

	// Optional redis cache in front of the park catalog.
	var parkCache social.ParkCache
	var redisCache *cache.ParkCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisCache, err = cache.NewParkCache(addr, 0)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		parkCache = redisCache
	}

	svc := httpapi.Services{
		Profiles:    social.NewProfiles(store),
		Connections: social.NewConnections(store),
		Favorites:   social.NewFavorites(store),
		Dogs:        social.NewDogs(store),
		Ratings:     social.NewRatings(store),
		Parks:       social.NewParks(store, parkCache),
	}

	// Sign-in events feed the profile bootstrapper.
	notifier := identity.NewNotifier()
	bootCtx, bootCancel := context.WithCancel(context.Background())
	bootstrapper := social.NewBootstrapper(svc.Profiles)
	go bootstrapper.Run(bootCtx, notifier.Subscribe(bootCtx))

	var probe httpapi.ReadyProbe
	if pg != nil {
		probe.DB = pg.DB()
	}
	api := httpapi.New(probe, version, verifier, notifier, svc)

	addr := os.Getenv("PAWPARK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	handler := httpapi.SecurityHeaders(httpapi.CORS(api.Handler()))
	handler = httpapi.RateLimit(handler, 50, 25)
	handler = httpapi.MaxBodyBytes(handler, 1<<20)
	handler = httpapi.Logging(handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting pawpark-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	bootCancel()
	if redisCache != nil {
		_ = redisCache.Close()
	}
	if pg != nil {
		_ = pg.Close()
	}
	log.Println("Stopped")
}
