package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/carhive/carhive-api/api/handlers"
	"github.com/carhive/carhive-api/api/scheduler"
	"github.com/carhive/carhive-api/config"
	"github.com/carhive/carhive-api/databases"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil { // initialize database and router
		log.Fatal(err)
	}

	dbHelper := a.DBHelper()
	s := scheduler.NewScheduler(
		databases.NewVehicleDatabase(dbHelper),
		databases.NewInactiveVehicleDatabase(dbHelper),
		databases.NewUserDatabase(dbHelper),
		databases.NewDealerDatabase(dbHelper),
		databases.NewSchedulerLockDatabase(dbHelper),
		databases.NewTxnRunner(dbHelper.Client()),
	)
	s.Start()
	defer s.Stop()

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("carhive-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
