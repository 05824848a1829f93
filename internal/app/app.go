// File: internal/app/app.go
package app

import (
	"sipaling_preloved_client/internal/address"
	"sipaling_preloved_client/internal/auth"
	"sipaling_preloved_client/internal/comment"
	"sipaling_preloved_client/internal/config"
	"sipaling_preloved_client/internal/jobs"
	"sipaling_preloved_client/internal/notification"
	"sipaling_preloved_client/internal/platform/localdb"
	"sipaling_preloved_client/internal/platform/logger"
	"sipaling_preloved_client/internal/product"
	"sipaling_preloved_client/internal/push"
	"sipaling_preloved_client/internal/searchhistory"
	"sipaling_preloved_client/internal/session"
	"sipaling_preloved_client/internal/transport"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the fully constructed client: one transport client, one session
// store, one repository per resource group, and the per-screen view-models.
// Everything is built here, explicitly, and passed by reference; no ambient
// singletons.
type App struct {
	Cfg      *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Client   *transport.Client
	Sessions *session.Store

	AuthRepo          auth.Repository
	ProductRepo       product.Repository
	AddressRepo       address.Repository
	CommentRepo       comment.Repository
	NotificationRepo  notification.Repository
	SearchHistoryRepo searchhistory.Repository

	Push *push.Service

	AuthVM          *auth.ViewModel
	ProductListVM   *product.ListViewModel
	ProductDetailVM *product.DetailViewModel
	ProductFormVM   *product.FormViewModel
	AddressVM       *address.ViewModel
	CommentVM       *comment.ViewModel
	NotificationVM  *notification.ViewModel
	SearchHistoryVM *searchhistory.ViewModel

	NotificationJob *jobs.NotificationRefreshJob
}

// New constructs the whole stack from configuration. The returned cleanup
// function stops background work and closes the local database.
func New(cfg *config.Config) (*App, func(), error) {
	appLogger, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	db, err := localdb.Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	sessions, err := session.NewStore(db, appLogger)
	if err != nil {
		localdb.Close(db)
		return nil, nil, err
	}

	client := transport.New(cfg, appLogger)

	authRepo := auth.NewRepository(client, sessions, appLogger)
	productRepo := product.NewRepository(client, sessions, appLogger)
	addressRepo := address.NewRepository(client, sessions, appLogger)
	commentRepo := comment.NewRepository(client, sessions, appLogger)
	notificationRepo := notification.NewRepository(client, sessions, appLogger)
	searchHistoryRepo, err := searchhistory.NewRepository(client, sessions, db, appLogger)
	if err != nil {
		localdb.Close(db)
		return nil, nil, err
	}

	pushService := push.NewService(client, sessions, appLogger)

	notificationVM := notification.NewViewModel(notificationRepo, appLogger)
	notificationJob := jobs.NewNotificationRefreshJob(notificationVM, sessions, appLogger, cfg)

	a := &App{
		Cfg:      cfg,
		Logger:   appLogger,
		DB:       db,
		Client:   client,
		Sessions: sessions,

		AuthRepo:          authRepo,
		ProductRepo:       productRepo,
		AddressRepo:       addressRepo,
		CommentRepo:       commentRepo,
		NotificationRepo:  notificationRepo,
		SearchHistoryRepo: searchHistoryRepo,

		Push: pushService,

		AuthVM:          auth.NewViewModel(authRepo, pushService, appLogger),
		ProductListVM:   product.NewListViewModel(productRepo, appLogger),
		ProductDetailVM: product.NewDetailViewModel(productRepo, appLogger),
		ProductFormVM:   product.NewFormViewModel(productRepo, appLogger),
		AddressVM:       address.NewViewModel(addressRepo, appLogger),
		CommentVM:       comment.NewViewModel(commentRepo, appLogger),
		NotificationVM:  notificationVM,
		SearchHistoryVM: searchhistory.NewViewModel(searchHistoryRepo, appLogger),

		NotificationJob: notificationJob,
	}

	cleanup := func() {
		appLogger.Info("Executing cleanup tasks...")
		notificationJob.Stop()
		localdb.Close(db)
		_ = appLogger.Sync()
	}

	return a, cleanup, nil
}
