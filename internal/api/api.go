package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/revampbot/revampbot/internal/storage"
)

type Config struct {
	Port uint16
}

func NewConfig(port uint16) *Config {
	return &Config{Port: port}
}

// API serves read-only community data over HTTP.
type API struct {
	ctx     context.Context
	logger  *zap.SugaredLogger
	storage *storage.Storage
	router  *gin.Engine
	serv    *http.Server
}

func NewAPI(ctx context.Context, logger *zap.SugaredLogger, storage *storage.Storage, config *Config) *API {
	a := &API{
		ctx:     ctx,
		logger:  logger,
		storage: storage,
		router:  gin.New(),
	}
	a.router.Use(gin.Recovery(), a.logRequests)
	a.registerGetLeaderboard()
	a.registerGetUserXP()
	a.registerGetWarnings()
	a.serv = &http.Server{Addr: fmt.Sprintf(":%d", config.Port), Handler: a.router, ReadHeaderTimeout: 10 * time.Second}
	return a
}

func (a *API) Handler() http.Handler {
	return a.router
}

func (a *API) Listen() {
	go func() {
		a.logger.Infof("Listening for API requests on %s.", a.serv.Addr)
		if err := a.serv.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				a.logger.Errorf("Server returned with error: %s.", err)
			}
		}
	}()
}

func (a *API) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.serv.Shutdown(ctx)
}

func (a *API) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	a.logger.Debugf("%s %s -> %d (%s).", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
}

// storageFailed maps a storage error onto a response. Reads only fail when the store is unusable.
func (a *API) storageFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(http.StatusServiceUnavailable)
	case errors.Is(err, storage.ErrNotInitialized), errors.Is(err, storage.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	default:
		a.logger.Errorf("Failed to serve %s: %s.", c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
