package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"coderoom/config"
	"coderoom/handlers/admin"
	"coderoom/hub"
	authMiddleware "coderoom/middleware"
	"coderoom/rooms"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func setupRouter(cfg *config.Config, manager *rooms.Manager, languages *config.LanguageValidator, sessions *admin.Sessions) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", admin.HandleLogin(cfg, sessions))
		r.Post("/logout", admin.HandleLogout())

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.AdminAuth(admin.CookieName, sessions))
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", admin.HandleListRooms(manager))
				r.Post("/", admin.HandleCreateRoom(manager, languages))
				r.Delete("/{roomID}", admin.HandleDeleteRoom(manager))
			})
		})
	})

	r.Get("/rooms/{roomID}", admin.HandleRoomProbe(manager))

	return r
}

func waitForShutdown(srv *socketio.Server) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-signals

	logrus.Info("Shutting down")
	srv.Close(nil)
	os.Exit(0)
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg := config.Load()
	languages := config.NewLanguageValidator(cfg.Languages)
	sessions := admin.NewSessions(cfg.JWTSecret)

	srv := hub.NewSocketServer()
	bus := hub.NewServerBroadcaster(srv)
	registry := rooms.NewRegistry(hub.NewNotifier(bus))
	manager := rooms.NewManager(registry, cfg.MaxUsersPerRoom)
	coordinator := hub.NewCoordinator(manager, languages, bus)
	hub.Bind(srv, coordinator)

	r := setupRouter(cfg, manager, languages, sessions)
	r.Mount("/socket.io/", srv.ServeHandler(nil))

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddress, r); err != nil {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	waitForShutdown(srv)
}
