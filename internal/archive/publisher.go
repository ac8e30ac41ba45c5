// Package archive publishes finished matches and session reports to
// Pub/Sub, encoded as MessagePack. Downstream consumers own long-term
// storage and analytics.
package archive

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/peladaclub/rachao/internal/match"
	"github.com/peladaclub/rachao/internal/metrics"
)

// New creates a Pub/Sub backed archive for the given project.
func New(projectID string, m metrics.Metrics) (Archive, error) {
	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return &pubsubArchive{
		publisher: publisher{
			client:   client,
			teardown: func() { client.Close() },
		},
		metrics: m,
	}, nil
}

type pubsubArchive struct {
	publisher
	metrics metrics.Metrics
}

func (a *pubsubArchive) SaveMatch(m *match.Match) error {
	if err := a.publish(TopicMatchArchive, m); err != nil {
		return err
	}
	log.Info("Archived match", "match", m.ID, "score_a", m.Score.A, "score_b", m.Score.B)
	return nil
}

func (a *pubsubArchive) SaveReport(r *match.SessionReport) error {
	if err := a.publish(TopicSessionReport, r); err != nil {
		return err
	}
	log.Info("Archived session report", "session", r.SessionKey, "matches", len(r.Matches))
	return nil
}

func (a *pubsubArchive) Close() {
	a.teardown()
}

func (a *pubsubArchive) publish(topic Topic, data any) error {
	ctx := context.Background()
	payload, err := msgpack.Marshal(data)
	if err != nil {
		a.metrics.IncArchiveFailed()
		return fmt.Errorf("msgpack marshal failed: %w", err)
	}
	result := a.client.Topic(string(topic)).Publish(ctx, &pubsub.Message{Data: payload})
	if _, err := result.Get(ctx); err != nil {
		a.metrics.IncArchiveFailed()
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	a.metrics.IncArchivePublished()
	return nil
}

// Decode unmarshals an archived record, for consumers pulling from the
// topics.
func Decode(data []byte, out any) error {
	if err := msgpack.Unmarshal(data, out); err != nil {
		return fmt.Errorf("msgpack unmarshal failed: %w", err)
	}
	return nil
}
