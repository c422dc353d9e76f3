package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revampbot/revampbot/internal/util"
)

// registerGetWarnings GET /guilds/:guild/warnings/:user
func (a *API) registerGetWarnings() {
	a.router.GET("/guilds/:guild/warnings/:user", func(c *gin.Context) {
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

		warnings, err := a.storage.UserWarnings(c.Request.Context(), userID, guildID)
		if err != nil {
			a.storageFailed(c, err)
			return
		}

		out := make([]*warningModel, len(warnings))
		for i, w := range warnings {
			out[i] = &warningModel{w.ID, w.ModeratorID, w.Reason, w.CreatedAt}
		}
		c.JSON(http.StatusOK, out)
	})
}
