package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bharat-ai/bharatai/internal/alert"
	"github.com/bharat-ai/bharatai/internal/config"
	"github.com/bharat-ai/bharatai/internal/domain"
	"github.com/bharat-ai/bharatai/internal/middleware"
	"github.com/bharat-ai/bharatai/internal/repository"
	"github.com/bharat-ai/bharatai/internal/service"
)

// UserStore is the user persistence surface the handlers need.
type UserStore interface {
	FindOrCreate(ctx context.Context, email, name, image, provider, providerID string) (*domain.User, bool, error)
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	Stats(ctx context.Context, id string) (domain.UserStats, error)
	UpdateProfile(ctx context.Context, id, name, bio string) (*domain.User, error)
	UpdateCustomImage(ctx context.Context, id string, image *domain.ImageRef) error
	List(ctx context.Context) ([]domain.User, error)
}

// Handler holds the dependencies shared by all route handlers.
type Handler struct {
	cfg      *config.Config
	chats    *service.ChatService
	imageGen *service.ImageGenService
	uploader *service.UploaderService
	push     *service.PushService
	models   *service.ModelCatalog
	users    UserStore
	subs     *repository.SubscriptionRepository
	alerts   alert.Sink
	logger   *slog.Logger
}

// Deps contains everything required to construct a Handler.
type Deps struct {
	Cfg      *config.Config
	Chats    *service.ChatService
	ImageGen *service.ImageGenService
	Uploader *service.UploaderService
	Push     *service.PushService
	Models   *service.ModelCatalog
	Users    UserStore
	Subs     *repository.SubscriptionRepository
	Alerts   alert.Sink
	Logger   *slog.Logger
}

func New(deps Deps) *Handler {
	alerts := deps.Alerts
	if alerts == nil {
		alerts = alert.Nop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:      deps.Cfg,
		chats:    deps.Chats,
		imageGen: deps.ImageGen,
		uploader: deps.Uploader,
		push:     deps.Push,
		models:   deps.Models,
		users:    deps.Users,
		subs:     deps.Subs,
		alerts:   alerts,
		logger:   logger,
	}
}

// Routes builds the full route tree with the middleware chain applied.
func (h *Handler) Routes() http.Handler {
	authed := http.NewServeMux()
	authed.HandleFunc("GET /api/chats", h.listChats)
	authed.HandleFunc("POST /api/chats", h.sendMessage)
	authed.HandleFunc("DELETE /api/chats", h.deleteChat)
	authed.HandleFunc("GET /api/chats/{id}", h.getChat)
	authed.HandleFunc("PATCH /api/chats/{id}", h.renameChat)
	authed.HandleFunc("POST /api/generate-image", h.generateImage)
	authed.HandleFunc("GET /api/image-models", h.listImageModels)
	authed.HandleFunc("GET /api/user/profile", h.getProfile)
	authed.HandleFunc("PUT /api/user/profile", h.updateProfile)
	authed.HandleFunc("POST /api/user/profile", h.uploadAvatar)
	authed.HandleFunc("DELETE /api/user/profile", h.deleteAvatar)
	authed.HandleFunc("POST /api/notifications/subscribe", h.subscribe)
	authed.HandleFunc("POST /api/notifications/unsubscribe", h.unsubscribe)
	authed.HandleFunc("POST /api/notifications/send", h.sendNotification)

	limiter := middleware.NewRateLimiter(config.RateLimitPerMinute)
	authedChain := middleware.UserLoader(h.users)(middleware.RateLimit(limiter)(authed))

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", h.health)
	root.HandleFunc("GET /api/notifications/vapid-key", h.vapidKey)
	root.HandleFunc("POST /api/auth/token", h.exchangeToken)
	root.HandleFunc("POST /api/admin/login", h.adminLogin)
	root.Handle("GET /api/admin/users", h.adminAuth(http.HandlerFunc(h.adminUsers)))
	root.Handle("GET /api/admin/stats", h.adminAuth(http.HandlerFunc(h.adminStats)))
	root.Handle("/api/", authedChain)

	return middleware.Logging(middleware.Recover(root))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves the API until ctx is cancelled, then drains in-flight
// requests.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
