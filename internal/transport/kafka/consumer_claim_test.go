package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"

	"fastfeet/internal/domain"
	"fastfeet/internal/notify"
	testlog "fastfeet/internal/testutil"
)

type fakeSession struct {
	ctx context.Context

	mu     sync.Mutex
	marked int
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(*sarama.ConsumerMessage, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked++
}

func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "" }
func (s *fakeSession) GenerationID() int32                      { return 0 }

func (s *fakeSession) MarkedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked
}

type fakeClaim struct {
	ch chan *sarama.ConsumerMessage
}

func (c fakeClaim) Topic() string              { return "t" }
func (c fakeClaim) Partition() int32           { return 0 }
func (c fakeClaim) InitialOffset() int64       { return 0 }
func (c fakeClaim) HighWaterMarkOffset() int64 { return 0 }
func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage {
	return c.ch
}

func claimOf(values ...[]byte) fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(values))
	for _, v := range values {
		ch <- &sarama.ConsumerMessage{Value: v}
	}
	close(ch)
	return fakeClaim{ch: ch}
}

func encoded(t *testing.T, deliveryID int64) []byte {
	t.Helper()
	b, err := notify.Encode(notify.Task{
		Name:    domain.TaskNewDelivery,
		Payload: domain.DeliverySnapshot{DeliveryID: deliveryID, Product: "Box"},
	})
	require.NoError(t, err)
	return b
}

func TestConsumeClaim_BadMessage_Skips(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, notify.Task) error {
			t.Fatal("handler must not be called")
			return nil
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf([]byte("not-json"), []byte(`{"task":"reminder","payload":{}}`)))
	require.NoError(t, err)
	require.Equal(t, 2, sess.MarkedCount())
	require.True(t, rec.Has("kafka bad message"))
}

func TestConsumeClaim_EmptyDeliveryID_Skips(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	calls := 0
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, notify.Task) error {
			calls++
			return nil
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(encoded(t, 0)))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())
	require.Equal(t, 0, calls)
	require.True(t, rec.Has("kafka empty delivery_id"))
}

func TestConsumeClaim_PermanentError_SkipsButMarks(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, notify.Task) error {
			return Permanent(errors.New("mailbox unavailable"))
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(encoded(t, 1)))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())

	e, ok := rec.Find("kafka handle failed, skipping message")
	require.True(t, ok)
	require.Equal(t, "error", e.Level)
}

func TestConsumeClaim_TransientError_StopsWithoutMarking(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	sentinel := errors.New("smtp unreachable")
	calls := 0
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, notify.Task) error {
			calls++
			return sentinel
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(encoded(t, 1), encoded(t, 2)))
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 0, sess.MarkedCount())
	require.Equal(t, 1, calls)
	require.True(t, rec.Has("kafka handle failed, will retry"))
}

func TestConsumeClaim_Success_Marks(t *testing.T) {
	t.Parallel()

	var got []int64
	c := &Consumer{
		logger: testlog.New().Logger(),
		handler: func(_ context.Context, task notify.Task) error {
			got = append(got, task.Payload.DeliveryID)
			require.Equal(t, domain.TaskNewDelivery, task.Name)
			return nil
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(encoded(t, 1), encoded(t, 2)))
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, got)
	require.Equal(t, 2, sess.MarkedCount())
}

func TestIsPermanent(t *testing.T) {
	t.Parallel()

	base := errors.New("x")
	require.True(t, IsPermanent(Permanent(base)))
	require.ErrorIs(t, Permanent(base), base)
	require.False(t, IsPermanent(base))
	require.Equal(t, "permanent error", PermanentError{}.Error())
}
