package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/salonflow/salon-api/internal/config"
	dbpkg "github.com/salonflow/salon-api/internal/db"
	"github.com/salonflow/salon-api/internal/logging"
	"github.com/salonflow/salon-api/internal/routes"
)

func main() {

	cfg := config.Load()
	logging.Init(cfg.LogLevel)

	db := dbpkg.NewDB(cfg)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg)

	log.Info().Str("addr", cfg.Addr()).Msg("server running")
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
