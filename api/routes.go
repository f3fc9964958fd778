package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/field-ledger/internal/connectivity"
	"github.com/carson-networks/field-ledger/internal/handlers/v1/record"
	"github.com/carson-networks/field-ledger/internal/handlers/v1/status"
	synchandler "github.com/carson-networks/field-ledger/internal/handlers/v1/sync"
	"github.com/carson-networks/field-ledger/internal/logging"
	"github.com/carson-networks/field-ledger/internal/reconcile"
	"github.com/carson-networks/field-ledger/internal/service"
)

type Rest struct {
	Logger  *logrus.Logger
	Port    string
	Service *service.Service
	Engine  *reconcile.Engine
	Monitor *connectivity.Monitor
}

func (r *Rest) Serve() {
	mux := http.NewServeMux()
	humaAPI := humago.New(mux, huma.DefaultConfig("field-ledger", "1.0.0"))

	record.NewCreateRecordHandler(r.Service.Ledger).Register(humaAPI)
	record.NewListRecordsHandler(r.Service.Ledger).Register(humaAPI)
	synchandler.NewForceSyncHandler(r.Engine).Register(humaAPI)

	statusHandler := status.NewHandler(r.Monitor, r.Service.Ledger)
	mux.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           mux,
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	r.Logger.Info("HttpServer.Serve.listening")
	err := server.ListenAndServe()
	if err != nil {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
	}
	r.Logger.Info("HttpServer.Serve.shutting down")
}
