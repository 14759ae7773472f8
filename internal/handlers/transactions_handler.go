package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/txstack/go-tx-ledger/internal/auth"
	"github.com/txstack/go-tx-ledger/internal/awsx"
	"github.com/txstack/go-tx-ledger/internal/ledger"
	"github.com/txstack/go-tx-ledger/internal/validation"
)

// maxPageLimit caps client-supplied limits on every listing endpoint.
const maxPageLimit int32 = 100

// HandlerConfig groups dependencies for the API handlers.
type HandlerConfig struct {
	DynamoDB         awsx.DynamoDBAPI
	SQS              awsx.SQSAPI
	CloudWatch       awsx.CloudWatchAPI
	TableName        string
	QueueURL         string
	MetricsNamespace string
	TTLWindow        time.Duration
}

// RegisterTransactionRoutes registers the transaction API on r, which is
// expected to already carry the auth middleware.
func RegisterTransactionRoutes(r gin.IRoutes, cfg HandlerConfig) {
	v := validation.New()
	store := ledger.NewStore(cfg.DynamoDB, cfg.TableName, cfg.TTLWindow)
	metrics := awsx.NewMetrics(cfg.CloudWatch, cfg.MetricsNamespace)

	var publisher *awsx.Publisher
	if cfg.SQS != nil && cfg.QueueURL != "" {
		publisher = awsx.NewPublisher(cfg.SQS, cfg.QueueURL)
	}

	r.POST("/transactions", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateTransactionRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		userID := auth.UserID(c)
		idempotencyKey := c.GetHeader("Idempotency-Key")

		tx, err := store.Create(ctx, userID, ledger.CreateInput{
			Amount:   req.Amount,
			Currency: req.Currency,
			Data:     req.Data,
		}, idempotencyKey)
		if err != nil {
			if errors.Is(err, ledger.ErrDuplicateRequest) {
				if merr := metrics.Count(ctx, awsx.MetricDuplicateRequest); merr != nil {
					log.Printf("metrics emit failed: %v", merr)
				}
				c.JSON(http.StatusConflict, gin.H{"error": "Request already processed"})
				return
			}
			log.Printf("create transaction failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		if merr := metrics.Count(ctx, awsx.MetricTransactionCreated); merr != nil {
			log.Printf("metrics emit failed: %v", merr)
		}

		// The create is already durable; a publish failure only delays the
		// notification, so the request still succeeds.
		if publisher != nil {
			ev := awsx.TransactionEvent{
				TxID:     tx.TxID,
				UserID:   tx.UserID,
				Amount:   tx.Amount,
				Currency: tx.Currency,
			}
			if perr := publisher.SendTransactionEvent(ctx, ev, c.GetHeader("X-Request-Id")); perr != nil {
				log.Printf("publish transaction event failed: %v", perr)
			}
		}

		c.JSON(http.StatusCreated, tx)
	})

	r.GET("/transactions", func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := auth.UserID(c)

		limit := parseLimit(c, ledger.DefaultUserPageLimit)
		startKey, err := decodeCursor(c.Query("cursor"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_cursor"})
			return
		}

		items, lastKey, err := store.ListByUser(ctx, userID, limit, startKey)
		if err != nil {
			log.Printf("list transactions failed: %v", err)
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

	r.GET("/transactions/global", func(c *gin.Context) {
		ctx := c.Request.Context()

		items, err := store.ListGlobalRecent(ctx, parseLimit(c, ledger.DefaultGlobalPageLimit))
		if err != nil {
			log.Printf("list global transactions failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	})

	r.GET("/transactions/:id", func(c *gin.Context) {
		ctx := c.Request.Context()

		tx, err := store.GetByID(ctx, c.Param("id"))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
				return
			}
			log.Printf("get transaction failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		// Ownership is enforced here, not in the store.
		if tx.UserID != auth.UserID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.JSON(http.StatusOK, tx)
	})
}

// parseLimit reads the limit query param, falling back and capping as needed.
func parseLimit(c *gin.Context, fallback int32) int32 {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n <= 0 {
		return fallback
	}
	if int32(n) > maxPageLimit {
		return maxPageLimit
	}
	return int32(n)
}
