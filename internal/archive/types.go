package archive

import "cloud.google.com/go/pubsub"

type publisher struct {
	client   *pubsub.Client
	teardown func()
}

// Topic identifies the destination stream for an archived record.
type Topic string

const (
	TopicMatchArchive  Topic = "match-archive"
	TopicSessionReport Topic = "session-report"
)
