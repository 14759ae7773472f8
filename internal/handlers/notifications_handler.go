package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/txstack/go-tx-ledger/internal/auth"
	"github.com/txstack/go-tx-ledger/internal/notifications"
)

// RegisterNotificationRoutes registers the notification listing endpoint.
func RegisterNotificationRoutes(r gin.IRoutes, cfg HandlerConfig) {
	store := notifications.NewStore(cfg.DynamoDB, cfg.TableName)

	r.GET("/notifications", func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := auth.UserID(c)

		limit := parseLimit(c, notifications.DefaultPageLimit)
		startKey, err := decodeCursor(c.Query("cursor"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_cursor"})
			return
		}

		items, lastKey, err := store.ListByUser(ctx, userID, limit, startKey)
		if err != nil {
			log.Printf("list notifications failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		nextCursor, err := encodeCursor(lastKey)
		if err != nil {
			log.Printf("encode cursor failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		resp := gin.H{"items": items}
		if nextCursor != "" {
			resp["nextCursor"] = nextCursor
		}
		c.JSON(http.StatusOK, resp)
	})
}
