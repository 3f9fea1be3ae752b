package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	echoapi "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/apps/api/echo"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
	logsvc "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/services/logger"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/storage/database"
	inmemdb "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/storage/database/inmem"
	sqlxrepos "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/storage/database/sqlx"
)

// demo account seeded in in-memory mode
const (
	demoTeacherEmail    = "teacher@school.ru"
	demoTeacherPassword = "teacher123"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	var (
		usrRepo    user.Repository
		schoolRepo school.Repository
		pinger     echoapi.Pinger
	)
	if conf.Server.InMemory {
		db, err := inmemdb.Open()
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening in-memory database: %v", err), err)
		}
		usrRepo = inmemdb.NewUserRepository(db)
		schoolRepo = inmemdb.NewSchoolRepository(db)
	} else {
		dbLogger := logsvc.NewRollbarLogger(
			log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
			conf,
		)
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				dbLogger.Error("Failed to close", err)
			}
		}()
		usrRepo = sqlxrepos.NewUserRepository(db)
		schoolRepo = sqlxrepos.NewSchoolRepository(db)
		pinger = db
	}

	usrSvc := user.NewService(usrRepo)
	schoolSvc := school.NewService(schoolRepo, conf.Server.ReportCacheTTL)

	if conf.Server.InMemory {
		seedDemoTeacher(usrSvc, logger)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics of the API.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			SchoolSvc:  schoolSvc,
			Validate:   validate,
			Translator: translator,
			Registerer: registry,
			DB:         pinger,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func seedDemoTeacher(svc *user.Service, logger core.Logger) {
	_, err := svc.Create(context.Background(), user.NewUser{
		FirstName: "Мария",
		LastName:  "Иванова",
		Email:     demoTeacherEmail,
		Password:  demoTeacherPassword,
		Role:      user.RoleTeacher,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("seeding demo teacher: %v", err), err)
	}
	logger.Info(fmt.Sprintf("in-memory mode: log in as %s / %s", demoTeacherEmail, demoTeacherPassword))
}
