package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tour-itinerary-service/internal/adapters/cache"
	"tour-itinerary-service/internal/adapters/lock"
	"tour-itinerary-service/internal/adapters/repositories"
	"tour-itinerary-service/internal/adapters/travel"
	"tour-itinerary-service/internal/api"
	"tour-itinerary-service/internal/config"
	"tour-itinerary-service/internal/platform/db"
	"tour-itinerary-service/internal/platform/metrics"
	"tour-itinerary-service/internal/ports"
	"tour-itinerary-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, ORS) behind ports and starts
// the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}
	port := config.Get("PORT", "8080")

	database, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	// Schema creation is idempotent; seeding stays in cmd/dbtool.
	if err := repositories.InitSchema(database); err != nil {
		log.Fatal(err)
	}

	metrics.RegisterDefault()

	provider := newTravelProvider(database)
	locker := newTourLocker()

	tours := repositories.NewPostgresTourRepository(database)
	venues := repositories.NewPostgresVenueRepository(database)
	events := repositories.NewPostgresEventRepository(database)
	itineraries := repositories.NewPostgresItineraryRepository(database)

	generator := &services.Generator{
		Tours:       tours,
		Venues:      venues,
		Events:      events,
		Itineraries: itineraries,
		Provider:    provider,
		Locker:      locker,
	}

	router := api.NewRouter(api.Deps{
		Tours:       tours,
		Venues:      venues,
		Events:      events,
		Itineraries: itineraries,
		Generator:   generator,
	})

	// Timeouts are tuned for cold-cache generation (external travel API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// newTravelProvider prefers OpenRouteService when an API key is configured;
// otherwise travel times are estimated from venue coordinates.
func newTravelProvider(database *sql.DB) ports.TravelTimeProvider {
	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		log.Println("ORS_API_KEY not set; using haversine travel estimates (venue coordinates required)")
		return travel.NewHaversineTravelProvider()
	}

	// ORS provider uses persistent SQL caches to avoid repeated geocode/matrix calls.
	travelCache := cache.NewSQLTravelCache(database)
	geocodeCache := cache.NewSQLGeocodeCache(database)
	provider, err := travel.NewORSTravelProvider(orsKey, travelCache, geocodeCache)
	if err != nil {
		log.Fatal(err)
	}
	return provider
}

// newTourLocker prefers Redis when configured so multiple service instances
// serialize generation per tour; the in-process locker covers single-node runs.
func newTourLocker() ports.TourLocker {
	redisAddr := os.Getenv("REDIS_ADDR")
	if strings.TrimSpace(redisAddr) == "" {
		log.Println("REDIS_ADDR not set; using in-process tour locks")
		return lock.NewMemoryTourLocker()
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	locker := lock.NewRedisTourLocker(client)
	locker.WaitTimeout = config.GetDuration("TOUR_LOCK_WAIT", locker.WaitTimeout)
	return locker
}
