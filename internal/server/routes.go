package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/photohandoff/internal/delivery"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": "0.0.1",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/deliveries", func(c *gin.Context) {
		tokens := s.process.Deliveries().Tokens()
		out := make([]string, 0, len(tokens))
		for _, t := range tokens {
			out = append(out, t.String())
		}
		c.JSON(http.StatusOK, gin.H{
			"pending": len(out),
			"tokens":  out,
		})
	})

	s.router.DELETE("/deliveries/:token", func(c *gin.Context) {
		raw := c.Param("token")
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token " + strconv.Quote(raw)})
			return
		}
		s.process.Deliveries().Remove(delivery.Token(v))
		c.JSON(http.StatusOK, gin.H{"status": "removed", "token": raw})
	})

	s.router.GET("/recoverers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"identifiers": s.process.Recoverer().Identifiers(),
		})
	})

	s.router.GET("/screens", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"screens": s.process.Screens(),
		})
	})
}
