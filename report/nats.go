package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Default stream settings for the NATS reporter.
const (
	defaultStreamName    = "CASSPARK_RESULTS"
	defaultSubjectPrefix = "casspark.results"
)

// NATSOption configures a NATS reporter.
type NATSOption func(*NATS)

// WithStreamName sets the JetStream stream name.
//
// Default: "CASSPARK_RESULTS"
//
// Parameters:
//   - name: The stream name
//
// Returns:
//   - NATSOption: A configuration option
func WithStreamName(name string) NATSOption {
	return func(n *NATS) {
		n.streamName = name
	}
}

// WithSubjectPrefix sets the subject prefix records are published under.
//
// Default: "casspark.results"
//
// Parameters:
//   - prefix: The subject prefix
//
// Returns:
//   - NATSOption: A configuration option
func WithSubjectPrefix(prefix string) NATSOption {
	return func(n *NATS) {
		n.subjectPrefix = prefix
	}
}

// NATS publishes outcome records to a JetStream stream, allowing a
// coordinating process to consume results from isolated test workers.
//
// Records are JSON-encoded and published to "<prefix>.<run_id>". The
// underlying NATS connection is owned by the caller and is not closed by
// this reporter.
type NATS struct {
	js            jetstream.JetStream
	streamName    string
	subjectPrefix string
}

// Compile-time assertion that NATS implements Reporter.
var _ Reporter = (*NATS)(nil)

// NewNATS creates a JetStream-backed reporter and ensures the results
// stream exists.
//
// Parameters:
//   - ctx: Context for the stream setup call
//   - js: A NATS JetStream context
//   - opts: Optional configuration options
//
// Returns:
//   - *NATS: A new reporter
//   - error: Error if js is nil or the stream cannot be created
//
// Example:
//
//	nc, _ := nats.Connect(natsURL)
//	js, _ := jetstream.New(nc)
//	reporter, _ := report.NewNATS(ctx, js)
func NewNATS(ctx context.Context, js jetstream.JetStream, opts ...NATSOption) (*NATS, error) {
	if js == nil {
		return nil, errors.New("casspark/report: JetStream context is nil")
	}

	n := &NATS{
		js:            js,
		streamName:    defaultStreamName,
		subjectPrefix: defaultSubjectPrefix,
	}

	for _, opt := range opts {
		opt(n)
	}

	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     n.streamName,
		Subjects: []string{n.subjectPrefix + ".>"},
	})
	if err != nil {
		return nil, fmt.Errorf("casspark/report: create results stream: %w", err)
	}

	return n, nil
}

// Report JSON-encodes the record and publishes it to the results stream.
func (n *NATS) Report(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("casspark/report: encode record: %w", err)
	}

	subject := n.subjectPrefix + "." + rec.RunID
	if _, err := n.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("casspark/report: publish record: %w", err)
	}

	return nil
}

// Close releases the reporter. The NATS connection is caller-owned, so this
// is a no-op.
func (n *NATS) Close() error {
	return nil
}
