package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/pingball/backend/internal/models"
	"github.com/pingball/backend/internal/relay"
)

// Keys maintained next to the event stream.
const (
	BoardsKey   = "pingball:boards"
	HandoffsKey = "pingball:handoffs"
)

// Publisher mirrors relay events onto a Redis channel and keeps the set of
// online boards and per-board handoff counters.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

func NewPublisher(rdb *redis.Client, channel string) *Publisher {
	return &Publisher{rdb: rdb, channel: channel}
}

func (p *Publisher) Publish(ctx context.Context, ev models.RelayEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Publish(ctx, p.channel, data)
		switch ev.Type {
		case models.EventBoardConnected:
			pipe.SAdd(ctx, BoardsKey, ev.Board)
		case models.EventBoardDisconnected:
			pipe.SRem(ctx, BoardsKey, ev.Board)
		case models.EventHandoff:
			if ev.Handoff != nil && ev.Handoff.Delivered {
				pipe.HIncrBy(ctx, HandoffsKey, ev.Handoff.FromBoard, 1)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// ResetBoards clears the online set, used when the relay starts.
func (p *Publisher) ResetBoards(ctx context.Context) error {
	return p.rdb.Del(ctx, BoardsKey).Err()
}

// CommandMessage is an operator command carried over Redis.
type CommandMessage struct {
	Command string `json:"command"`
	Source  string `json:"source,omitempty"`
}

func decodeCommand(payload string) (relay.Command, error) {
	var msg CommandMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return relay.Command{}, fmt.Errorf("invalid command payload: %w", err)
	}
	return relay.ParseCommand(msg.Command)
}

// PublishCommand sends an operator command to every relay subscribed to channel.
// It returns the number of relays that received it.
func PublishCommand(ctx context.Context, rdb *redis.Client, channel, command, source string) (int64, error) {
	if _, err := relay.ParseCommand(command); err != nil {
		return 0, err
	}
	data, err := json.Marshal(CommandMessage{Command: command, Source: source})
	if err != nil {
		return 0, err
	}
	return rdb.Publish(ctx, channel, data).Result()
}

// StartCommandSubscriber applies operator commands published on channel to
// rl until ctx is cancelled.
func StartCommandSubscriber(ctx context.Context, rdb *redis.Client, channel string, rl *relay.Relay) {
	if rdb == nil {
		log.Println("[REDIS] Redis client not set; command subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, channel)
	ch := pubsub.Channel()
	go func() {
		<-ctx.Done()
		pubsub.Close()
	}()
	go func() {
		log.Printf("[REDIS] %s subscriber started", channel)
		for msg := range ch {
			cmd, err := decodeCommand(msg.Payload)
			if err != nil {
				log.Printf("[REDIS] %v", err)
				continue
			}
			if err := rl.Apply(cmd); err != nil {
				log.Printf("[REDIS] command %q failed: %v", cmd, err)
				continue
			}
			log.Printf("[REDIS] applied command %q", cmd)
		}
	}()
}
