package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"paper-soccer/internal/config"
	"paper-soccer/internal/game"
	"paper-soccer/internal/link"
	"paper-soccer/internal/match"
	"paper-soccer/internal/strategy"
)

// MatchStore is the registry the handlers read and write matches through.
type MatchStore interface {
	GetMatch(id string) (*match.Manager, bool)
	SaveMatch(m *match.Manager)
	ListMatches() []*match.Manager
}

// statusFor maps match and game errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		cfgErr *game.ConfigError
		badReq badRequest
	)
	switch {
	case errors.Is(err, match.ErrNotYourTurn):
		return http.StatusConflict
	case errors.Is(err, game.ErrIllegalMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, match.ErrMatchOver),
		errors.Is(err, match.ErrNotReady),
		errors.Is(err, match.ErrStarted),
		errors.Is(err, match.ErrLinkBusy):
		return http.StatusConflict
	case errors.Is(err, match.ErrAborted):
		// the move was played but could not reach the peer
		return http.StatusBadGateway
	case errors.As(err, &cfgErr),
		errors.As(err, &badReq),
		errors.Is(err, strategy.ErrUnknownStrategy),
		errors.Is(err, match.ErrUnknownInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func lookup(s MatchStore, c *gin.Context) (*match.Manager, bool) {
	m, ok := s.GetMatch(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
	}
	return m, ok
}

// @Summary Create a match
// @Description Configure a new match; omitted fields use the server defaults
// @Tags Match
// @Accept json
// @Produce json
// @Param request body CreateMatchRequest false "Match setup"
// @Success 201 {object} match.View
// @Router /matches [post]
func CreateMatchHandler(s MatchStore, b match.Broadcaster, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMatchRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		m, err := buildMatch(req, b, cfg)
		if err != nil {
			abortWithError(c, err)
			return
		}
		s.SaveMatch(m)
		c.JSON(http.StatusCreated, m.View())
	}
}

// badRequest tags parse failures of request fields as client errors.
type badRequest struct{ error }

func buildMatch(req CreateMatchRequest, b match.Broadcaster, cfg config.Config) (*match.Manager, error) {
	rules, starting, name := cfg.Rules, cfg.StartingPlayer, cfg.Strategy
	var err error
	if req.Rules != "" {
		if rules, err = game.ParseRules(req.Rules); err != nil {
			return nil, badRequest{err}
		}
	}
	if req.StartingPlayer != "" {
		if starting, err = game.ParsePlayer(req.StartingPlayer); err != nil {
			return nil, badRequest{err}
		}
	}
	if req.Strategy != "" {
		name = strings.ToLower(req.Strategy)
	}

	dims := cfg.Board
	if req.Width != nil {
		dims.Width = *req.Width
	}
	if req.Height != nil {
		dims.Height = *req.Height
	}
	if req.GoalWidth != nil {
		dims.GoalWidth = *req.GoalWidth
	}

	m := match.New(b, strategy.OptionsFrom(cfg))
	if err := m.SetRules(rules); err != nil {
		return nil, err
	}
	if err := m.SetStartingPlayer(starting); err != nil {
		return nil, err
	}
	if err := m.ConfigureBoard(dims); err != nil {
		return nil, err
	}
	if err := m.SetStrategy(name); err != nil {
		return nil, err
	}
	for p, raw := range map[game.Player]string{game.PlayerA: req.PlayerA, game.PlayerB: req.PlayerB} {
		if raw == "" {
			continue
		}
		ctrl, err := match.ParseControl(raw)
		if err != nil {
			return nil, err
		}
		if err := m.SetControl(p, ctrl); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// @Summary List matches
// @Tags Match
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /matches [get]
func ListMatchesHandler(s MatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		views := []match.View{}
		for _, m := range s.ListMatches() {
			views = append(views, m.View())
		}
		c.JSON(http.StatusOK, gin.H{"matches": views})
	}
}

// @Summary Get match state
// @Tags Match
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} match.View
// @Router /matches/{id} [get]
func GetMatchHandler(s MatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := lookup(s, c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, m.View())
	}
}

// @Summary Check a direction
// @Description Without a direction, lists every legal direction from the ball
// @Tags Game
// @Produce json
// @Param id path string true "Match ID"
// @Param direction query string false "Direction (N, NE, ...)"
// @Success 200 {object} map[string]interface{}
// @Router /matches/{id}/legal [get]
func LegalHandler(s MatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := lookup(s, c)
		if !ok {
			return
		}
		raw := c.Query("direction")
		if raw == "" {
			legal := m.View().Legal
			if legal == nil {
				legal = []game.Direction{}
			}
			c.JSON(http.StatusOK, gin.H{"legal": legal})
			return
		}
		d, err := game.ParseDirection(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"direction": d, "legal": m.IsLegal(d)})
	}
}

// @Summary Local human plays one move
// @Tags Game
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body MoveRequest true "Move"
// @Success 200 {object} map[string]interface{}
// @Router /matches/{id}/move [post]
func MoveHandler(s MatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := lookup(s, c)
		if !ok {
			return
		}
		var req MoveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		d, err := game.ParseDirection(req.Direction)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		st, err := m.ApplyHumanMove(d)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "state": st, "match": m.View()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": st, "match": m.View()})
	}
}

// @Summary Computer plays its whole turn
// @Tags Game
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Router /matches/{id}/computer-move [post]
func ComputerMoveHandler(s MatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := lookup(s, c)
		if !ok {
			return
		}
		seq, err := m.RequestComputerMove()
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sequence": seq, "match": m.View()})
	}
}

// @Summary Connect to a peer
// @Description Starts hosting or dialing in the background; progress arrives as "link" events
// @Tags Link
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body LinkRequest true "Discovery"
// @Success 202 {object} map[string]interface{}
// @Router /matches/{id}/link [post]
func LinkHandler(ctx context.Context, s MatchStore, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := lookup(s, c)
		if !ok {
			return
		}
		var req LinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !req.AmHost && req.PeerAddress == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "peerAddress required when joining"})
			return
		}

		// the link outlives this request, so it hangs off the server context
		a, err := m.Establish(ctx, link.ConfigFrom(cfg.Link), link.Discovery{AmHost: req.AmHost, PeerAddress: req.PeerAddress})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"role": a.Role(), "addr": a.Addr()})
	}
}

// @Summary Drop the peer link
// @Description Cancels a pending attempt or closes the link; a match in progress is aborted
// @Tags Link
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} match.View
// @Router /matches/{id}/link [delete]
func CancelLinkHandler(s MatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := lookup(s, c)
		if !ok {
			return
		}
		m.CancelLink()
		c.JSON(http.StatusOK, m.View())
	}
}

// @Summary Abort a match
// @Tags Match
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body AbortRequest false "Reason"
// @Success 200 {object} match.View
// @Router /matches/{id}/abort [post]
func AbortHandler(s MatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := lookup(s, c)
		if !ok {
			return
		}
		var req AbortRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		if req.Reason == "" {
			req.Reason = "aborted by user"
		}
		if err := m.Abort(req.Reason); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, m.View())
	}
}
