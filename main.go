package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/sponsorengage/mailer/config"
	"github.com/sponsorengage/mailer/internal/database"
	"github.com/sponsorengage/mailer/internal/logger"
	"github.com/sponsorengage/mailer/internal/repository"
	"github.com/sponsorengage/mailer/server"
	"github.com/sponsorengage/mailer/services"
)

func main() {
	app := &cli.App{
		Name:  "engage-mailer",
		Usage: "Bulk invitation mailer for sponsor study assessments",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(c *cli.Context) error {
					_, db := mustInit()
					if err := repository.MigrateDB(db); err != nil {
						return err
					}
					log.Println("Database migration completed successfully")
					return nil
				},
			},
			{
				Name:  "server",
				Usage: "Start the application server",
				Action: func(c *cli.Context) error {
					cfg, db := mustInit()

					log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
					log.Println("Engage mailer starting up...")

					srv, err := server.NewServer(cfg, db)
					if err != nil {
						log.Fatalf("Server setup failed: %v", err)
					}

					if err := srv.Run(); err != nil {
						log.Fatalf("Server startup failed: %v", err)
					}

					log.Println("Shutdown complete")
					return nil
				},
			},
			{
				Name:  "monitor",
				Usage: "Run one invitation reconciliation pass and exit",
				Action: func(c *cli.Context) error {
					cfg, db := mustInit()

					appLogger := logger.NewAppLogger(cfg.Logger)
					appLogger.InitLogger()

					repos := repository.InitRepositories(db)
					svcs, err := services.InitServices(c.Context, cfg, appLogger, repos)
					if err != nil {
						return err
					}

					svcs.InvitationMonitor.MonitorInvitationEmails(context.Background())
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

func mustInit() (*config.Config, *gorm.DB) {
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Config initialization failed: %v", err)
	}

	db, err := database.InitDatabase(&database.DatabaseConfig{
		DBName:          cfg.DatabaseConfig.DBName,
		Host:            cfg.DatabaseConfig.Host,
		Port:            cfg.DatabaseConfig.Port,
		User:            cfg.DatabaseConfig.User,
		Password:        cfg.DatabaseConfig.Password,
		MaxConn:         cfg.DatabaseConfig.MaxConn,
		MaxIdleConn:     cfg.DatabaseConfig.MaxIdleConn,
		ConnMaxLifetime: cfg.DatabaseConfig.ConnMaxLifetime,
		LogLevel:        cfg.DatabaseConfig.LogLevel,
		SSLMode:         cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}

	return cfg, db
}
