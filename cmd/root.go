package cmd

import (
	"context"
	"os"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	coreConfig "github.com/AzielCF/az-telebox/core/config"
	coreDB "github.com/AzielCF/az-telebox/core/database"
	domainSettings "github.com/AzielCF/az-telebox/domains/settings"
	domainUser "github.com/AzielCF/az-telebox/domains/user"
	"github.com/AzielCF/az-telebox/infrastructure/telegram"
	infraValkey "github.com/AzielCF/az-telebox/infrastructure/valkey"
	"github.com/AzielCF/az-telebox/integrations/terabox"
	"github.com/AzielCF/az-telebox/integrations/unlock"
	"github.com/AzielCF/az-telebox/pkg/reaper"
	"github.com/AzielCF/az-telebox/pkg/updateworker"
	"github.com/AzielCF/az-telebox/pkg/utils"
	"github.com/AzielCF/az-telebox/repository"
	"github.com/AzielCF/az-telebox/usecase"
	"github.com/AzielCF/az-telebox/validations"
)

var (
	// Storage
	userRepo     domainUser.IUserRepository
	settingsRepo domainSettings.ISettingsRepository
	valkeyClient *infraValkey.Client

	// Workflow
	messengerAdapter *telegram.Adapter
	dispatcher       *usecase.Dispatcher
	updatePool       *updateworker.Pool
	deletionReaper   *reaper.Reaper

	appCtx    context.Context
	appCancel context.CancelFunc

	// Flag overrides applied on top of the environment.
	flagPort     string
	flagDebug    bool
	flagDBDriver string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Short: "Terabox video relay bot over Telegram",
	Long: `Relays Terabox share links through a video-resolution API and delivers
the result on Telegram, gated behind a 24-hour unlock-link access window.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagDBDriver,
		"db-driver", "",
		"",
		`storage backend --db-driver <string> | one of: memory, sqlite, postgres, valkey`,
	)
}

func initApp() {
	cfg, err := coreConfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if flagPort != "" {
		cfg.App.Port = flagPort
	}
	if flagDebug {
		cfg.App.Debug = true
	}
	if flagDBDriver != "" {
		cfg.Database.Driver = flagDBDriver
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if cfg.Telegram.BotToken == "" {
		logrus.Fatalln("BOT_TOKEN is required. Set BOT_TOKEN=<token from @BotFather> and restart.")
	}
	if err := validations.ValidateUpstreamConfig(context.Background(), cfg.Upstream); err != nil {
		logrus.Fatalf("Invalid upstream configuration: %v", err)
	}

	if err := utils.CreateFolder(cfg.Paths.Storages); err != nil {
		logrus.Errorln(err)
	}

	appCtx, appCancel = context.WithCancel(context.Background())

	initStorage(cfg)

	if err := userRepo.Init(appCtx); err != nil {
		logrus.Fatalf("Failed to init user store: %v", err)
	}
	if err := settingsRepo.Init(appCtx); err != nil {
		logrus.Fatalf("Failed to init settings store: %v", err)
	}

	messengerAdapter, err = telegram.NewAdapter(cfg.Telegram.BotToken, cfg.App.Debug)
	if err != nil {
		logrus.Fatalf("Failed to connect to Telegram: %v", err)
	}

	resolveTimeout := time.Duration(cfg.Upstream.ResolveTimeoutSecs) * time.Second
	unlockClient := unlock.NewClient(unlock.Config{
		Endpoint:       cfg.Upstream.UnlockLinkAPI,
		RedirectPrefix: cfg.Upstream.RedirectPrefix,
		Timeout:        resolveTimeout,
	})
	videoClient := terabox.NewClient(terabox.Config{
		BaseURL: cfg.Upstream.VideoAPIBase,
		Timeout: resolveTimeout,
	})

	deletionReaper = reaper.New(messengerAdapter)
	deletionReaper.Start(appCtx)

	updatePool = updateworker.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	updatePool.Start(appCtx)

	accessUsecase := usecase.NewAccessService(userRepo)
	resolverUsecase := usecase.NewResolverService(unlockClient, videoClient)
	deliveryUsecase := usecase.NewDeliveryService(
		userRepo, accessUsecase, resolverUsecase, settingsRepo, messengerAdapter, deletionReaper,
		usecase.DeliveryOptions{
			RedirectPrefix: cfg.Upstream.RedirectPrefix,
			DeleteDelay:    time.Duration(cfg.Delivery.DeleteDelaySecs) * time.Second,
		},
	)
	adminUsecase := usecase.NewAdminService(
		cfg.Telegram.AdminIDs, userRepo, settingsRepo, messengerAdapter,
		time.Duration(cfg.Delivery.BroadcastPauseMs)*time.Millisecond,
	)

	dispatcher = usecase.NewDispatcher(deliveryUsecase, adminUsecase)

	logrus.Infof("[APP] Initialized with %s storage, %d admin(s)", cfg.Database.Driver, len(cfg.Telegram.AdminIDs))
}

func initStorage(cfg *coreConfig.Config) {
	switch cfg.Database.Driver {
	case "memory":
		userRepo = repository.NewMemoryUserStore()
		settingsRepo = repository.NewMemorySettingsStore()

	case "sqlite", "postgres":
		db, err := coreDB.NewDatabase(cfg)
		if err != nil {
			logrus.Fatalf("Failed to open database: %v", err)
		}
		userRepo = repository.NewGormUserStore(db)
		settingsRepo = repository.NewGormSettingsStore(db)

	case "valkey":
		client, err := infraValkey.NewClient(infraValkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Fatalf("Failed to connect to valkey: %v", err)
		}
		valkeyClient = client
		userRepo = repository.NewValkeyUserStore(client)
		settingsRepo = repository.NewValkeySettingsStore(client)

	default:
		logrus.Fatalf("Unknown DB_DRIVER %q, expected memory, sqlite, postgres or valkey", cfg.Database.Driver)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of the worker pool and storage connections.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if updatePool != nil {
		updatePool.Stop()
	}
	if appCancel != nil {
		appCancel()
	}
	if valkeyClient != nil {
		valkeyClient.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
