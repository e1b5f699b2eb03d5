package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paper-soccer/internal/config"
	"paper-soccer/internal/strategy"
)

type ConfigHandler struct {
	cfg config.Config
}

func NewConfigHandler(cfg config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// GetDefaultsHandler returns the defaults a new match starts from
// @Summary Get match defaults
// @Description Board, rules, strategy and heuristic weights used when a create request leaves them out
// @Tags Config
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /config [get]
func (h *ConfigHandler) GetDefaultsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"board":          h.cfg.Board,
		"rules":          h.cfg.Rules,
		"startingPlayer": h.cfg.StartingPlayer,
		"strategy":       h.cfg.Strategy,
		"strategies":     strategy.Names(),
		"weights":        h.cfg.Weights,
		"linkPort":       h.cfg.Link.Port,
	})
}
