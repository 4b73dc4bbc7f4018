package web

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/soltrackdao/pump_relay/config"
	"github.com/soltrackdao/pump_relay/core/web/handler"
	"github.com/soltrackdao/pump_relay/utils/logger"
)

func ServerRoute(h *handler.WebhookHandler) *gin.Engine {
	router := gin.New()

	recoverFile, err := os.OpenFile("./log/recover.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil || recoverFile == nil {
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("open recover log file failed")
		}
		if recoverFile == nil {
			logger.Logrus.Error("open recover log file failed:recoverFile is nil")
		}

		return nil
	}

	visitLogFile := config.GetServerConfig().VisitLogFile
	if visitLogFile == "" {
		visitLogFile = "./log/visit.log"
	}

	router.Use(MiddleLogger(visitLogFile), gin.RecoveryWithWriter(recoverFile))

	// http router
	router.POST("/sol/webhook", MiddleAuth(), h.Handle)

	return router
}

func Run(h *handler.WebhookHandler) {
	router := ServerRoute(h)
	if router == nil {
		return
	}

	addr := config.GetServerConfig().ListenAddr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Fatal("Server start failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("Server forced to shutdown")
	}

	logger.Logrus.Info("Server shutdown")
}
