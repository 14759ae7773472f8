package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/txstack/go-tx-ledger/internal/auth"
	"github.com/txstack/go-tx-ledger/internal/awsx"
	"github.com/txstack/go-tx-ledger/internal/config"
	"github.com/txstack/go-tx-ledger/internal/handlers"
)

func setupRouter(cfg *config.Config, clients *awsx.Clients, verifier auth.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	hcfg := handlers.HandlerConfig{
		DynamoDB:         clients.DynamoDB,
		SQS:              clients.SQS,
		CloudWatch:       clients.CloudWatch,
		TableName:        cfg.TableName,
		QueueURL:         cfg.QueueURL,
		MetricsNamespace: cfg.MetricsNamespace,
		TTLWindow:        cfg.IdempotencyTTL,
	}

	api := r.Group("/", auth.Middleware(verifier))
	handlers.RegisterTransactionRoutes(api, hcfg)
	handlers.RegisterNotificationRoutes(api, hcfg)

	return r
}

func main() {
	ctx := context.Background()
	cfg := config.Load()

	clients, err := awsx.NewClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	verifier, err := auth.NewVerifier(cfg.CognitoRegion, cfg.CognitoUserPoolID, cfg.CognitoClientID)
	if err != nil {
		log.Fatalf("failed to init token verifier: %v", err)
	}

	r := setupRouter(cfg, clients, verifier)

	// RUN_LOCAL=true runs a plain HTTP server for development.
	if cfg.RunLocal {
		addr := ":" + cfg.Port
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
