package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/driftchat/relay-server/internal/core"
	"github.com/driftchat/relay-server/internal/proto"
)

const apiQueryTimeout = 2 * time.Second

// ErrorResponse is the JSON shape for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomSummaryResponse is one room in the status listing.
type RoomSummaryResponse struct {
	RoomID    string `json:"roomId"`
	Members   int    `json:"members"`
	Messages  int    `json:"messages"`
	CreatedAt int64  `json:"createdAt"`
}

// presenceHandler serves the current presence snapshot. The view is
// computed on the hub loop, so it is always a committed state.
func presenceHandler(hub *core.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), apiQueryTimeout)
		defer cancel()

		snap, err := hub.PresenceSnapshot(ctx)
		if err != nil {
			c.JSON(stdhttp.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
			return
		}
		users := make([]proto.PresenceUser, 0, len(snap))
		for _, u := range snap {
			users = append(users, proto.PresenceUser{
				UserID:      u.UserID,
				DisplayName: u.DisplayName,
				JoinedAt:    u.JoinedAt.UnixMilli(),
				RoomID:      u.Room,
				Status:      u.Status,
			})
		}
		c.JSON(stdhttp.StatusOK, proto.PresenceSnapshot{Users: users, Count: len(users)})
	}
}

// roomsHandler lists live rooms with member and message counts.
func roomsHandler(hub *core.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), apiQueryTimeout)
		defer cancel()

		summaries, err := hub.RoomSummaries(ctx)
		if err != nil {
			c.JSON(stdhttp.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
			return
		}
		out := make([]RoomSummaryResponse, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, RoomSummaryResponse{
				RoomID:    s.Name,
				Members:   s.Members,
				Messages:  s.Messages,
				CreatedAt: s.CreatedAt.UnixMilli(),
			})
		}
		c.JSON(stdhttp.StatusOK, gin.H{"rooms": out, "count": len(out)})
	}
}
