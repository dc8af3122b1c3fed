package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	ordernotification "github.com/Apurer/gifting-api/internal/domains/orders/adapters/notification"
	orderports "github.com/Apurer/gifting-api/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/gifting-api/internal/platform/observability"
	platformtemporal "github.com/Apurer/gifting-api/internal/platform/temporal"
	orderactivities "github.com/Apurer/gifting-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/gifting-api/internal/platform/temporal/workflows/orders"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()
	const serviceName = "gifting-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	notifier, closeNotifier, err := buildNotifier(logger)
	if err != nil {
		logger.Error("failed to configure order notifier", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeNotifier()
	activities := orderactivities.NewActivities(notifier)

	namespace := envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace)
	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: namespace,
	}, instruments.Tracer("temporal-worker"), logger)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.NotificationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.NotificationWorkflow, workflow.RegisterOptions{Name: orderworkflows.NotificationWorkflowName})
	w.RegisterActivityWithOptions(activities.SendNotification, activity.RegisterOptions{Name: orderactivities.SendNotificationActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.NotificationTaskQueue), slog.String("namespace", namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildNotifier(logger *slog.Logger) (orderports.Notifier, func(), error) {
	location, err := time.LoadLocation(envOrDefault("TIMEZONE", "Asia/Kolkata"))
	if err != nil {
		return nil, nil, err
	}
	formatter := ordernotification.NewFormatter(os.Getenv("WHATSAPP_BUSINESS_NUMBER"), location)
	if !strings.EqualFold(os.Getenv("NOTIFY_CHANNEL"), "kafka") {
		return ordernotification.NewLogNotifier(formatter, logger), func() {}, nil
	}
	var brokers []string
	for _, broker := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	producer, err := ordernotification.NewSyncProducer(brokers)
	if err != nil {
		return nil, nil, err
	}
	notifier := ordernotification.NewKafkaNotifier(producer, os.Getenv("KAFKA_TOPIC"), formatter)
	return notifier, func() { _ = notifier.Close() }, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
