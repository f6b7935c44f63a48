// Command useradd stores a login for AUTH_MODE=store.
//
//	useradd -login DEMOUSER00 -name "Demo Holder" -password '...'
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/baharkarakas/netbank-dashboard/internal/config"
	"github.com/baharkarakas/netbank-dashboard/internal/db"
	"github.com/baharkarakas/netbank-dashboard/internal/logger"
	"github.com/baharkarakas/netbank-dashboard/internal/repository/postgres"
	"github.com/baharkarakas/netbank-dashboard/internal/services"
)

func main() {
	login := flag.String("login", "", "login id (stored upper-cased)")
	name := flag.String("name", "", "display name")
	password := flag.String("password", "", "password, at least 8 characters")
	flag.Parse()

	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	if cfg.Backend.URL == "" {
		log.Error("BACKEND_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.Backend.URL, cfg.Backend.PublicKey)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	u, err := services.NewUserService(postgres.NewRepositories(pool).Users).Register(ctx, *login, *name, *password)
	if err != nil {
		log.Error("register", "err", err)
		os.Exit(1)
	}
	log.Info("user created", "id", u.ID, "login_id", u.LoginID)
}
