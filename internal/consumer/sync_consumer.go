package consumer

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/roomstay/booking-service/internal/models"
	"github.com/roomstay/booking-service/internal/repository"
)

// SyncConsumer mirrors rooms from the listing service and users from the
// identity service into local read models, so actor checks never leave the
// booking database.
type SyncConsumer struct {
	roomRepo repository.RoomRepository
	userRepo repository.UserRepository
}

func NewSyncConsumer(roomRepo repository.RoomRepository, userRepo repository.UserRepository) *SyncConsumer {
	return &SyncConsumer{roomRepo: roomRepo, userRepo: userRepo}
}

// Start drains the sync queue in the background, dispatching by routing key.
func (sc *SyncConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			sc.handleMessage(msg)
		}
		log.Println("[SyncConsumer] channel closed, stopping consumer")
	}()
}

func (sc *SyncConsumer) handleMessage(msg amqp.Delivery) {
	ctx := context.Background()

	switch {
	case strings.HasPrefix(msg.RoutingKey, "room."):
		var room models.Room
		if err := json.Unmarshal(msg.Body, &room); err != nil {
			log.Printf("[SyncConsumer] failed to unmarshal room: %v", err)
			msg.Nack(false, false)
			return
		}
		if err := sc.roomRepo.Upsert(ctx, &room); err != nil {
			log.Printf("[SyncConsumer] failed to upsert room %d: %v", room.ID, err)
			msg.Nack(false, true) // requeue
			return
		}
		log.Printf("[SyncConsumer] synced room %d (host %s)", room.ID, room.HostID)

	case strings.HasPrefix(msg.RoutingKey, "user."):
		var user models.User
		if err := json.Unmarshal(msg.Body, &user); err != nil {
			log.Printf("[SyncConsumer] failed to unmarshal user: %v", err)
			msg.Nack(false, false)
			return
		}
		if err := sc.userRepo.Upsert(ctx, &user); err != nil {
			log.Printf("[SyncConsumer] failed to upsert user %s: %v", user.ID, err)
			msg.Nack(false, true) // requeue
			return
		}
		log.Printf("[SyncConsumer] synced user %s (%s)", user.ID, user.Role)

	default:
		log.Printf("[SyncConsumer] ignoring routing key %s", msg.RoutingKey)
	}

	msg.Ack(false)
}
