package core

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(Options{})
	go hub.Run(ctx)

	sender := NewClient("sender", 64)
	hub.RegisterClient(sender)
	sender.Commands <- &Command{Kind: CommandRegister, User: "sender"}
	sender.Commands <- &Command{Kind: CommandJoinRoom, Room: "bench"}

	clients := make([]*Client, 0, recipients)
	for i := 0; i < recipients; i++ {
		id := "c" + strconv.Itoa(i)
		c := NewClient(id, 64)
		hub.RegisterClient(c)
		c.Commands <- &Command{Kind: CommandRegister, User: id}
		c.Commands <- &Command{Kind: CommandJoinRoom, Room: "bench"}
		clients = append(clients, c)
	}

	// Drain events for all but the first recipient to avoid channel backpressure.
	target := clients[0]
	for _, c := range clients[1:] {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}
	go func() {
		for range sender.Events {
		}
	}()

	// Wait until every join has been committed, then flush the target's
	// setup backlog so dropped events cannot stall the timed loop.
	for {
		summaries, err := hub.RoomSummaries(ctx)
		if err != nil {
			b.Fatalf("room summaries: %v", err)
		}
		if len(summaries) == 1 && summaries[0].Members == recipients+1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
drain:
	for {
		select {
		case <-target.Events:
		default:
			break drain
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Commands <- &Command{
			Kind: CommandSendRoomMessage,
			Room: "bench",
			User: "sender",
			Text: "payload",
		}
		for {
			ev := <-target.Events
			if ev != nil && ev.Kind == EventRoomMessage {
				break
			}
		}
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
