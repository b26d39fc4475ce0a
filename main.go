package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eliotaldersonfsociety/tienlatoree/config"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/adminapi"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/app"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/storeapi"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/webserver"
)

var (
	cfile   = flag.String("c", "latoree.yml", "configuration file")
	initdb  = flag.Bool("initdb", false, "drop and recreate the database schema")
	showVer = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("latoree", version)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*cfile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database schema recreated")
		return
	}

	application.StartBackgroundJobs(context.Background())

	webserver.Init(cfg, application.DB())

	adminapi.RunSchedulerNow = application.RunSchedulerNow
	adminapi.InitRouter(application.Catalog(), application.Behavior())

	handler := storeapi.NewHandler(
		application.Catalog(),
		application.Checkout(),
		application.Auth(),
		application.Orders(),
		application.Behavior(),
		application.Mailer(),
		application.ConfigMgr().ShopSettings().ResetURL,
	)
	handler.InitRouter()

	if err := webserver.Listen(); err != nil {
		zap.L().Fatal("web server stopped", zap.Error(err))
	}
}
