// schedule-sim serves a fixture schedule payload over HTTP and can publish
// a schedule.updated event to Kafka, for exercising the availability
// service end to end without a real schedule source.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/calhq/freebusy/internal/schedule"
	"github.com/calhq/freebusy/libs/kafkax"
)

func main() {
	var (
		listen  = flag.String("listen", getenv("LISTEN_ADDR", ""), "serve the schedule payload on this address (e.g. :9090)")
		file    = flag.String("file", getenv("SCHEDULE_FILE", ""), "JSON payload file to serve instead of the built-in fixture")
		brokers = flag.String("brokers", getenv("KAFKA_BROKERS", ""), "publish a schedule.updated event to these brokers (comma separated)")
		topic   = flag.String("topic", getenv("KAFKA_TOPIC", "schedule.updated.v1"), "topic for the schedule.updated event")
	)
	flag.Parse()

	if strings.TrimSpace(*listen) == "" && strings.TrimSpace(*brokers) == "" {
		fatal("one of -listen or -brokers is required")
	}

	payload, err := loadPayload(*file)
	if err != nil {
		fatal(err.Error())
	}
	body, err := json.Marshal(payload)
	if err != nil {
		fatal(err.Error())
	}

	if strings.TrimSpace(*brokers) != "" {
		if err := publishUpdated(*brokers, *topic); err != nil {
			fatal(err.Error())
		}
		fmt.Printf("published %s\n", *topic)
	}

	if strings.TrimSpace(*listen) != "" {
		http.HandleFunc("/schedule", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		})
		fmt.Printf("serving %d days, %d timeslots on %s/schedule\n", len(payload.Days), len(payload.Timeslots), *listen)
		if err := http.ListenAndServe(*listen, nil); err != nil {
			fatal(err.Error())
		}
	}
}

func loadPayload(path string) (schedule.Payload, error) {
	if path == "" {
		return fixture(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return schedule.Payload{}, err
	}
	var payload schedule.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return schedule.Payload{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return payload, nil
}

func fixture() schedule.Payload {
	return schedule.Payload{
		Days: []schedule.Day{
			{ID: 1, Date: "2024-10-10", Start: "09:00", End: "18:00"},
			{ID: 2, Date: "2024-10-11", Start: "08:00", End: "17:00"},
		},
		Timeslots: []schedule.Timeslot{
			{ID: 1, DayID: 1, Start: "11:00", End: "12:00"},
			{ID: 3, DayID: 2, Start: "09:30", End: "16:00"},
		},
	}
}

func publishUpdated(brokers, topic string) error {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: kafkax.SplitBrokers(brokers),
		Topic:   topic,
	})
	defer writer.Close()

	now := time.Now().UTC()
	value, err := json.Marshal(map[string]string{
		"source":     "schedule-sim",
		"updated_at": now.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(uuid.NewString())},
		{Key: "event_type", Value: []byte(topic)},
	}
	headers = kafkax.InjectTraceHeaders(context.Background(), headers)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(now.Format(time.RFC3339Nano)),
		Value:   value,
		Headers: headers,
	})
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "schedule-sim: "+msg)
	os.Exit(1)
}
