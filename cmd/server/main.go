package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"

	"github.com/iliyamo/movie-ticket-booking/internal/clock"
	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/lifecycle"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	port := pflag.String("port", "", "HTTP port (overrides APP_PORT)")
	pflag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Fatalf("config: load %s: %v", *envFile, err)
	}
	cfg := config.Load() // Load environment config
	if *port != "" {
		cfg.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// Workers outlive the signal so in-flight bookings are still
	// processed while the HTTP server drains.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Process state starts empty on every run.
	store := repository.NewStore()
	theaters := repository.NewTheaterRepo(store)
	movies := repository.NewMovieRepo(store)
	bookings := repository.NewBookingRepo(store)

	var workers sync.WaitGroup
	run := func(name string, fn func()) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			fn()
			log.Printf("%s: stopped", name)
		}()
	}

	var notifier queue.Notifier
	if cfg.EventsEnabled {
		pub := service.NewRabbitPublisher(cfg.RabbitURL, cfg.EventBuffer, cfg.PublishTimeout)
		notifier = pub
		run("rabbitmq", func() { pub.Run(workerCtx) })
		if cfg.ConsumeEvents {
			run("booking-consumer", func() { _ = queue.StartBookingConsumer(workerCtx, cfg.RabbitURL, cfg.BookingLogDir) })
		}
	}

	bookingQueue := queue.NewQueue()
	processor := queue.NewProcessor(bookingQueue, bookings, notifier)
	run("booking-processor", func() { _ = processor.Run(workerCtx) })

	ticker := lifecycle.NewTicker(movies, clock.Real(), cfg.TickInterval)
	run("lifecycle", func() { ticker.Run(workerCtx) })

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.Printf("redis: %v; caching and rate limiting disabled", err)
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, store.Version)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, bookingQueue) // Register application routes
	router.RegisterTheaters(e, handler.NewTheaterHandler(theaters), cache)
	router.RegisterMovies(e, handler.NewMovieHandler(movies), cache)
	router.RegisterBooking(e, handler.NewBookingHandler(processor, cfg.BookingTimeout), limit)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	log.Println("shutting down server…")
	shutdown(e, stopWorkers, &workers, 10*time.Second)
	log.Println("server stopped")
}

// shutdown stops accepting requests and waits for in-flight ones, and
// only then stops the background workers.  Bookings already accepted
// by the server therefore still reach the processor.
func shutdown(e *echo.Echo, stopWorkers context.CancelFunc, workers *sync.WaitGroup, timeout time.Duration) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	stopWorkers()
	workers.Wait()
}
