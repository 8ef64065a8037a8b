package rabbit

import (
	"context"
	"testing"
	"time"

	"github.com/agbru/bigadd/internal/mpi"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()
	for _, data := range [][]int{nil, {0}, {9, 0, 1, 9}, {-1, 1 << 40}} {
		got, err := decode(encode(data))
		require.NoError(t, err)
		assert.Len(t, got, len(data))
		for i := range data {
			assert.Equal(t, data[i], got[i])
		}
	}
}

func TestDecodeRejectsCorruptBodies(t *testing.T) {
	t.Parallel()
	good := encode([]int{1, 2, 3})
	cases := map[string][]byte{
		"empty":     {},
		"truncated": good[:len(good)-1],
		"trailing":  append(append([]byte{}, good...), 0),
		"too long":  {0x7f},
	}
	for name, body := range cases {
		_, err := decode(body)
		assert.Error(t, err, name)
	}
}

func TestRouteFilesByEnvelope(t *testing.T) {
	t.Parallel()
	box := mpi.NewPostbox()
	pub := publishing(3, 4, []int{7, 8})
	err := route(box, amqp.Delivery{Headers: pub.Headers, Body: pub.Body})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := box.Take(ctx, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8}, got)
}

func TestRouteRejectsBadHeaders(t *testing.T) {
	t.Parallel()
	box := mpi.NewPostbox()
	body := encode([]int{1})
	assert.Error(t, route(box, amqp.Delivery{Headers: amqp.Table{headerTag: int32(0)}, Body: body}))
	assert.Error(t, route(box, amqp.Delivery{Headers: amqp.Table{headerSource: "zero", headerTag: int32(0)}, Body: body}))
	assert.Equal(t, 0, box.Pending())

	ok, err := headerInt(amqp.Table{"k": int64(5)}, "k")
	require.NoError(t, err)
	assert.Equal(t, 5, ok)
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Config{Session: "s", Rank: 0, Size: 2}.validate())
	assert.Error(t, Config{Session: "s", Rank: 2, Size: 2}.validate())
	assert.Error(t, Config{Session: "s", Rank: 0, Size: 0}.validate())
	assert.Error(t, Config{Rank: 0, Size: 1}.validate())
	assert.Equal(t, DefaultURL, Config{}.url())
	assert.Equal(t, "bigadd.run1.rank.3", QueueName("run1", 3))
}
