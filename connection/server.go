package connection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"teamboard/cache"
	"teamboard/config"
	authcontroller "teamboard/controller/auth"
	taskcontroller "teamboard/controller/task"
	usercontroller "teamboard/controller/user"
	"teamboard/dto"
	"teamboard/middleware"
	"teamboard/repository"
	"teamboard/repository/firestoredb"
	"teamboard/repository/memory"
	"teamboard/repository/mongodb"
	"teamboard/services"
)

// Stores holds the repositories of the configured backend and the hooks that
// release its connections on shutdown.
type Stores struct {
	Tasks  repository.TaskRepository
	Users  repository.UserRepository
	Closer map[string]gfshutdown.Operation
}

func MemoryStores() *Stores {
	return &Stores{
		Tasks:  memory.NewTaskRepository(),
		Users:  memory.NewUserRepository(),
		Closer: map[string]gfshutdown.Operation{},
	}
}

// OpenStores connects to the backend named by cfg.StoreDriver.
func OpenStores(ctx context.Context, cfg config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Println("[server] Using in-memory store")
		return MemoryStores(), nil

	case config.DriverFirestore:
		client, err := FBConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Tasks: firestoredb.NewTaskRepository(client),
			Users: firestoredb.NewUserRepository(client),
			Closer: map[string]gfshutdown.Operation{
				"firestore": func(context.Context) error { return client.Close() },
			},
		}, nil

	case config.DriverMongo:
		client, db, err := MongoConnection(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Tasks: mongodb.NewTaskRepository(db),
			Users: mongodb.NewUserRepository(db),
			Closer: map[string]gfshutdown.Operation{
				"mongodb": client.Disconnect,
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

type Services struct {
	Tasks *services.TaskService
	Users *services.UserService
	JWT   *services.JWTService
}

// NewServices wires the services over stores. summaries may be nil to
// disable the user summary cache.
func NewServices(cfg config.Config, stores *Stores, summaries services.SummaryCache) Services {
	jwt := services.NewJWTService(services.JWTConfig{
		AccessSecret:    cfg.JWTSecret,
		RefreshSecret:   cfg.JWTRefreshSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})
	directory := services.NewUserDirectory(stores.Users, summaries)
	return Services{
		Tasks: services.NewTaskService(stores.Tasks, directory),
		Users: services.NewUserService(stores.Users, jwt, directory, cfg.AdminEmails),
		JWT:   jwt,
	}
}

func NewRouter(cfg config.Config, svc Services) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}

	if len(cfg.AllowedOrigins) == 0 {
		return nil, errors.New("no CORS origins configured, set CORS_ALLOWED_ORIGINS")
	}

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	api := router.Group("/api")
	auth := middleware.AccessTokenMiddleware(svc.Users)

	authcontroller.AuthController(api, svc.Users, svc.JWT, auth)
	taskcontroller.TaskController(api, svc.Tasks, auth)
	usercontroller.UserController(api, svc.Users, auth)

	return router, nil
}

// Server is the assembled HTTP API with the shutdown hooks of everything it
// opened.
type Server struct {
	HTTP     *http.Server
	Shutdown map[string]gfshutdown.Operation
}

// StartServer opens the configured backends, starts listening and returns
// once the listener goroutine is running.
func StartServer(ctx context.Context, cfg config.Config) (*Server, error) {
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ops := stores.Closer

	var summaries services.SummaryCache
	if cfg.RedisAddr != "" {
		rdb, err := RedisConnection(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			closeAll(ops)
			return nil, err
		}
		summaries = cache.New(rdb, "teamboard:", cfg.UserCacheTTL)
		ops["redis"] = func(context.Context) error { return rdb.Close() }
	}

	router, err := NewRouter(cfg, NewServices(cfg, stores, summaries))
	if err != nil {
		closeAll(ops)
		return nil, err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[server] Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] Failed to serve: %v", err)
		}
	}()

	ops["http-server"] = srv.Shutdown
	return &Server{HTTP: srv, Shutdown: ops}, nil
}

func closeAll(ops map[string]gfshutdown.Operation) {
	for name, op := range ops {
		if err := op(context.Background()); err != nil {
			log.Printf("[server] Error closing %s: %v", name, err)
		}
	}
}
