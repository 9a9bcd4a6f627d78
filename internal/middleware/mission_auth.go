package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elky431-debug/creax-backend/internal/database"
	"github.com/elky431-debug/creax-backend/internal/models"
)

// RequireMissionParty checks that the user is a party to the mission in the
// URL: its creator or, once assigned, its designer.
func RequireMissionParty() gin.HandlerFunc {
	return func(c *gin.Context) {
		missionIDStr := c.Param("id")
		missionID, err := strconv.ParseUint(missionIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid mission ID",
			})
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		var mission models.Mission
		if err := database.GetDB().
			Preload("Creator").
			Preload("AssignedDesigner").
			First(&mission, missionID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Mission not found",
			})
			c.Abort()
			return
		}

		isAssignee := mission.AssignedDesignerID != nil && *mission.AssignedDesignerID == userID
		if mission.CreatorID != userID && !isAssignee {
			// Return 404 instead of 403 to avoid leaking mission existence
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Mission not found",
			})
			c.Abort()
			return
		}

		c.Set("mission", mission)
		c.Next()
	}
}
