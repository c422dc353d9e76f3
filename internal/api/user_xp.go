package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revampbot/revampbot/internal/util"
)

// registerGetUserXP GET /guilds/:guild/users/:user/xp
func (a *API) registerGetUserXP() {
	a.router.GET("/guilds/:guild/users/:user/xp", func(c *gin.Context) {
		var param guildUserParam
		if err := c.ShouldBindUri(&param); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		guildID, gerr := util.ParseSnowflake(param.Guild)
		userID, uerr := util.ParseSnowflake(param.User)
		if gerr != nil || uerr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guild or user id"})
			return
		}

		u, err := a.storage.UserXP(c.Request.Context(), userID, guildID)
		if err != nil {
			a.storageFailed(c, err)
			return
		}
		if u == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user has no xp in this guild"})
			return
		}

		m := &userXPModel{UserID: u.UserID, GuildID: u.GuildID, XP: u.XP, Level: u.Level, TotalMessages: u.TotalMessages}
		if !u.LastMessageAt.IsZero() {
			m.LastMessageAt = &u.LastMessageAt
		}
		c.JSON(http.StatusOK, m)
	})
}
