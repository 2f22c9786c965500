package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"whatsapp-catalog-service/internal/app"
	"whatsapp-catalog-service/internal/config"
)

func main() {
	cfg := config.Load()
	logger := app.NewLogger(cfg.LogLevel)

	application, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize service")
	}

	adapter := ginadapter.New(application.Router)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
