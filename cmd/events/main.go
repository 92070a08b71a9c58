package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"shoppingts/internal/config"
	"shoppingts/internal/kafka"
	"shoppingts/internal/notify"
	"syscall"
)

// Читает события витрины из Kafka и пишет их в лог.
func main() {
	cfg := config.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := kafka.NewConsumer(cfg.Kafka, kafka.Forward(notify.LogNotifier{}))
	done := make(chan struct{})
	go func() {
		consumer.Run(ctx)
		close(done)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Println("Остановка чтения событий...")
	cancel()
	<-done
}
