package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	coreConfig "github.com/AzielCF/az-telebox/core/config"
	"github.com/AzielCF/az-telebox/ui/rest"
	"github.com/AzielCF/az-telebox/ui/rest/middleware"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the Telegram webhook over http",
	Long:  `Starts the webhook server that receives Telegram updates and the admin API.`,
	Run:   restServer,
}

func init() {
	restCmd.Flags().String("basic-auth", "", "Basic auth for the admin API (format: user:pass,user2:pass2)")
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	if baFlag, _ := cmd.Flags().GetString("basic-auth"); baFlag != "" {
		coreConfig.Global.App.BasicAuth = strings.Split(baFlag, ",")
	}

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "Az-Telebox Relay Engine",
		DisableStartupMessage:   false,
		ServerHeader:            "Hidden",
	}

	if len(coreConfig.Global.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = coreConfig.Global.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())
	app.Use(middleware.Recovery())

	if coreConfig.Global.App.Debug {
		app.Use(logger.New())
	}

	basePath := coreConfig.Global.App.BasePath

	// The webhook endpoint stays public; Telegram authenticates through the
	// secret path segment, not through basic auth.
	rest.InitRestWebhook(app.Group(basePath), dispatcher, updatePool, coreConfig.Global.Telegram.WebhookSecret)

	// Admin API goes behind basic auth. Without credentials configured it is
	// not registered at all.
	if len(coreConfig.Global.App.BasicAuth) > 0 {
		account := make(map[string]string)
		for _, basicAuth := range coreConfig.Global.App.BasicAuth {
			ba := strings.Split(basicAuth, ":")
			if len(ba) != 2 {
				logrus.Fatalln("Basic auth is not valid, please use the following format <user>:<secret>")
			}
			account[ba[0]] = ba[1]
		}

		apiGroup := app.Group(basePath + "/api")
		apiGroup.Use(basicauth.New(basicauth.Config{Users: account}))

		rest.InitRestStats(apiGroup, userRepo, updatePool, deletionReaper)
		rest.InitRestHealth(apiGroup, userRepo)

		apiGroup.All("/*", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "API Endpoint not found",
				"path":  c.Path(),
			})
		})
	} else {
		logrus.Warn("[REST] APP_BASIC_AUTH not set, admin API disabled")
	}

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}

		StopApp()
	}()

	if err := app.Listen(":" + coreConfig.Global.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}
