package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/txstack/go-tx-ledger/internal/awsx"
	"github.com/txstack/go-tx-ledger/internal/config"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	clients, err := awsx.NewClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	p := NewProcessor(clients.DynamoDB, cfg.TableName)

	// RUN_LOCAL=true simulates a single SQS event for local testing.
	if cfg.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"txId":"tx-local-1","userId":"local-user","amount":10.5,"currency":"ARS"}`
		}
		ev := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: body},
			},
		}
		if err := p.Handle(ctx, ev); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
