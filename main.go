package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/field-ledger/api"
	"github.com/carson-networks/field-ledger/internal/config"
	"github.com/carson-networks/field-ledger/internal/connectivity"
	"github.com/carson-networks/field-ledger/internal/logging"
	"github.com/carson-networks/field-ledger/internal/operator"
	"github.com/carson-networks/field-ledger/internal/reconcile"
	"github.com/carson-networks/field-ledger/internal/service"
	"github.com/carson-networks/field-ledger/internal/shellcache"
	"github.com/carson-networks/field-ledger/internal/storage"
)

func main() {
	_ = godotenv.Load()
	logger := logging.SetupLogging()
	logrus.Info("field-ledger starting")

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	// The durable store is the ground truth; if it cannot be opened there is
	// nothing safe this process can do.
	store, err := storage.Open(envConfig.DatabasePath)
	if err != nil {
		logrus.WithError(err).Fatal("storage.Open")
		return
	}
	defer store.Close()

	writeQueue := operator.NewOperatorDelegator(store.Records, 1)
	writeQueue.Start()
	defer writeQueue.Stop()

	svc := service.NewService(store.Records, writeQueue)

	transport := reconcile.NewHTTPTransport(envConfig.RemoteBaseURL, envConfig.RemoteTimeout)
	engine := reconcile.NewEngine(store.Records, writeQueue, transport, logger)

	triggerSync := func() {
		if err := engine.Trigger(context.Background()); err != nil &&
			!errors.Is(err, reconcile.ErrSyncInFlight) {
			logger.WithError(err).Warn("sync cycle failed, records remain pending")
		}
	}

	monitor := connectivity.NewMonitor(
		envConfig.RemoteBaseURL+"/healthz",
		envConfig.ProbeInterval,
		logger,
		func() { go triggerSync() },
	)
	monitor.Start(context.Background())
	defer monitor.Stop()

	if monitor.IsOnline() {
		go triggerSync()
	}

	wg := sync.WaitGroup{}
	wg.Add(1)

	go serveShellCache(envConfig, logger)

	go func() {
		httpRest := api.Rest{
			Logger:  logger,
			Port:    envConfig.Port,
			Service: svc,
			Engine:  engine,
			Monitor: monitor,
		}
		httpRest.Serve()
	}()

	wg.Wait()
}

// serveShellCache runs the offline cache worker on its own listener. A failed
// install is surfaced in the log and the worker keeps passing traffic through;
// there is no automatic retry, the next deployment's manifest gets its chance.
func serveShellCache(envConfig *config.Config, logger *logrus.Logger) {
	manifest, err := shellcache.LoadManifest(envConfig.ShellManifestPath)
	if err != nil {
		logger.WithError(err).Error("shellcache.LoadManifest, shell will not be cached")
		return
	}

	worker, err := shellcache.NewWorker(manifest, envConfig.ShellCacheDir, envConfig.ShellOriginURL, logger)
	if err != nil {
		logger.WithError(err).Error("shellcache.NewWorker")
		return
	}

	if err := worker.Install(context.Background()); err != nil {
		logger.WithError(err).Error("shellcache.Install failed, previous cache stays current")
		if !worker.Recover() {
			logger.Warn("shellcache has no previous version to serve, passing traffic through")
		}
	} else if err := worker.Activate(); err != nil {
		logger.WithError(err).Error("shellcache.Activate failed")
	}

	server := http.Server{
		Addr:              ":" + envConfig.ShellCachePort,
		Handler:           worker,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	logger.WithField("port", envConfig.ShellCachePort).Info("ShellCache.Serve.listening")
	if err := server.ListenAndServe(); err != nil {
		logger.WithError(err).Error("ShellCache.Serve.listen error")
	}
}
