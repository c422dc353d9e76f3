package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revampbot/revampbot/internal/storage"
	"github.com/revampbot/revampbot/internal/util"
)

// registerGetLeaderboard GET /guilds/:guild/leaderboard?limit=
func (a *API) registerGetLeaderboard() {
	a.router.GET("/guilds/:guild/leaderboard", func(c *gin.Context) {
		var param guildParam
		var query struct {
			Limit int `form:"limit" binding:"min=0,max=100"`
		}
		if err := c.ShouldBindUri(&param); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := c.ShouldBindQuery(&query); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		guildID, err := util.ParseSnowflake(param.Guild)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guild id"})
			return
		}

		limit := query.Limit
		if limit == 0 {
			limit = storage.DefaultLeaderboardLimit
		}
		entries, err := a.storage.Leaderboard(c.Request.Context(), guildID, limit)
		if err != nil {
			a.storageFailed(c, err)
			return
		}

		out := make([]*leaderboardEntryModel, len(entries))
		for i, e := range entries {
			out[i] = &leaderboardEntryModel{i + 1, e.UserID, e.XP, e.Level, e.TotalMessages}
		}
		c.JSON(http.StatusOK, out)
	})
}
