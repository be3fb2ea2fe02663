package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/darshanbhalani/temperature-consumer/internal/queue"
)

type fakeFetcher struct {
	polls  []kgo.Fetches
	marked []*kgo.Record
	closed bool
}

func (f *fakeFetcher) PollFetches(ctx context.Context) kgo.Fetches {
	if len(f.polls) == 0 {
		<-ctx.Done()
		return kgo.NewErrFetch(ctx.Err())
	}
	next := f.polls[0]
	f.polls = f.polls[1:]
	return next
}

func (f *fakeFetcher) MarkCommitRecords(rs ...*kgo.Record) { f.marked = append(f.marked, rs...) }
func (f *fakeFetcher) Close()                              { f.closed = true }

func fetchOf(err error, values ...string) kgo.Fetches {
	records := make([]*kgo.Record, 0, len(values))
	for _, v := range values {
		records = append(records, &kgo.Record{Topic: "temperature", Value: []byte(v)})
	}
	return kgo.Fetches{{Topics: []kgo.FetchTopic{{
		Topic:      "temperature",
		Partitions: []kgo.FetchPartition{{Partition: 0, Err: err, Records: records}},
	}}}}
}

func TestFranzConsumerReceive(t *testing.T) {
	ff := &fakeFetcher{polls: []kgo.Fetches{fetchOf(nil, "a", "b"), fetchOf(nil, "c")}}
	c := &FranzConsumer{client: ff, topic: "temperature"}

	for _, expected := range []string{"a", "b", "c"} {
		value, err := c.Receive(context.Background())
		require.NoError(t, err)
		require.Equal(t, expected, string(value))
	}
	require.Len(t, ff.marked, 3)

	require.NoError(t, c.Close())
	require.True(t, ff.closed)
}

func TestFranzConsumerReceiveFetchError(t *testing.T) {
	ff := &fakeFetcher{polls: []kgo.Fetches{fetchOf(errors.New("not leader for partition"))}}
	c := &FranzConsumer{client: ff, topic: "temperature"}

	_, err := c.Receive(context.Background())
	require.Error(t, err)
	require.True(t, queue.IsTransient(err))
}

func TestFranzConsumerReceiveClientClosed(t *testing.T) {
	ff := &fakeFetcher{polls: []kgo.Fetches{kgo.NewErrFetch(kgo.ErrClientClosed)}}
	c := &FranzConsumer{client: ff, topic: "temperature"}

	_, err := c.Receive(context.Background())
	require.ErrorIs(t, err, queue.ErrClosed)
}

func TestFranzConsumerReceiveCancelled(t *testing.T) {
	c := &FranzConsumer{client: &fakeFetcher{}, topic: "temperature"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Receive(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
