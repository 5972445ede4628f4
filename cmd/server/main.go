package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload" // Загружает .env до чтения конфигурации
	_ "github.com/lib/pq" // Драйвер PostgreSQL
	"github.com/rs/zerolog"

	"github.com/maynagashev/gophtodo/internal/handlers"
	"github.com/maynagashev/gophtodo/internal/logger"
	appmiddleware "github.com/maynagashev/gophtodo/internal/middleware"
	"github.com/maynagashev/gophtodo/internal/repository"
	"github.com/maynagashev/gophtodo/internal/services"
	"github.com/maynagashev/gophtodo/internal/storage"
	"github.com/maynagashev/gophtodo/internal/web"
)

// Подменяется в тестах.
var newPostgresDB = repository.NewPostgresDB

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db       *sqlx.DB
	tokens   *services.TokenManager
	handlers *handlerSet
}

// handlerSet - все HTTP-обработчики приложения.
type handlerSet struct {
	auth   *handlers.AuthHandler
	todo   *handlers.TodoHandler
	user   *handlers.UserHandler
	static *handlers.StaticHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка выполнения сервера: %v\n", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	log.Info().Str("env", cfg.Env).Str("addr", cfg.Addr).Msg("Запуск сервера GophTodo")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setupDependencies(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	// Отложенное закрытие соединения с БД
	defer func() {
		if closeErr := deps.db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Ошибка закрытия соединения с БД")
		}
	}()

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      setupRouter(deps.handlers, deps.tokens, log),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("HTTP-сервер слушает")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		return fmt.Errorf("ошибка запуска HTTP-сервера: %w", err)
	case <-ctx.Done():
		log.Info().Msg("Получен сигнал завершения, останавливаем сервер")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки HTTP-сервера: %w", err)
	}
	log.Info().Msg("Сервер остановлен")
	return nil
}

// setupDependencies подключает БД, готовит схему и собирает сервисы и обработчики.
func setupDependencies(ctx context.Context, cfg *config, log zerolog.Logger) (*dependencies, error) {
	db, err := newPostgresDB(cfg.DatabaseDSN, logger.Component(log, "DB"))
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}
	if err = repository.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	assets, err := setupAssets(ctx, cfg.Minio, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens := services.NewTokenManager(services.TokenConfig{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL})
	hs, err := newHandlerSet(
		repository.NewPostgresUserRepository(db, logger.Component(log, "UserRepo")),
		repository.NewPostgresTodoRepository(db, logger.Component(log, "TodoRepo")),
		services.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		assets,
		log,
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &dependencies{db: db, tokens: tokens, handlers: hs}, nil
}

// setupAssets выбирает источник статики: бакет MinIO, если задан endpoint, иначе встроенные файлы.
// Встроенная статика публикуется в бакет при каждом запуске.
func setupAssets(ctx context.Context, cfg minioConfig, log zerolog.Logger) (handlers.AssetSource, error) {
	if cfg.Endpoint == "" {
		return storage.NewFSStorage(web.Static()), nil
	}

	minioLog := logger.Component(log, "Minio")
	client, err := storage.NewMinioClient(ctx, storage.MinioConfig{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.User,
		SecretAccessKey: cfg.Password,
		UseSSL:          cfg.UseSSL,
		BucketName:      cfg.Bucket,
	}, minioLog)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}
	if _, err = storage.PublishAssets(ctx, client, web.Static(), minioLog); err != nil {
		return nil, fmt.Errorf("ошибка публикации статики: %w", err)
	}
	return client, nil
}

// newHandlerSet собирает сервисы и обработчики поверх репозиториев.
func newHandlerSet(
	userRepo repository.UserRepository,
	todoRepo repository.TodoRepository,
	hasher services.PasswordHasher,
	tokens *services.TokenManager,
	assets handlers.AssetSource,
	log zerolog.Logger,
) (*handlerSet, error) {
	renderer, err := handlers.NewRenderer(web.Templates(), logger.Component(log, "Renderer"))
	if err != nil {
		return nil, err
	}

	authService := services.NewAuthService(userRepo, hasher, tokens, logger.Component(log, "AuthService"))
	todoService := services.NewTodoService(todoRepo, logger.Component(log, "TodoService"))

	return &handlerSet{
		auth:   handlers.NewAuthHandler(authService, renderer, logger.Component(log, "AuthHandler")),
		todo:   handlers.NewTodoHandler(todoService, renderer, logger.Component(log, "TodoHandler")),
		user:   handlers.NewUserHandler(authService, renderer, logger.Component(log, "UserHandler")),
		static: handlers.NewStaticHandler(assets, logger.Component(log, "Static")),
	}, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(h *handlerSet, tokens appmiddleware.TokenVerifier, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger(logger.Component(log, "HTTP")))
	r.Use(middleware.Recoverer)

	// --- Маршруты --- //
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/todos", http.StatusFound)
	})
	r.Get("/static/*", h.static.Serve)

	// Публичные маршруты (регистрация, вход)
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", h.auth.LoginPage)
		r.Post("/login", h.auth.Login)
		r.Get("/logout", h.auth.Logout)
		r.Get("/register", h.auth.RegisterPage)
		r.Post("/register", h.auth.Register)
		r.Post("/token", h.auth.Token)
	})

	// Приватные маршруты (требуют аутентификации)
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Authenticator(tokens, logger.Component(log, "AuthMiddleware")))
		r.Use(appmiddleware.RequireUser)

		r.Get("/todos", h.todo.List)
		r.Get("/todos/add_todo", h.todo.AddPage)
		r.Post("/todos/add_todo", h.todo.Add)
		r.Get("/todos/edit_todo/{id}", h.todo.EditPage)
		r.Post("/todos/edit_todo/{id}", h.todo.Edit)
		r.Get("/todos/delete/{id}", h.todo.Delete)
		r.Get("/todos/complete/{id}", h.todo.Complete)

		r.Get("/users/edit_password", h.user.EditPasswordPage)
		r.Post("/users/edit_password", h.user.EditPassword)
	})
	return r
}
