package queue_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bbernhard/styletransfer-playground/src/datastructures"
	"github.com/bbernhard/styletransfer-playground/src/queue"
)

func ok(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("unexpected error: %s", err.Error())
	}
}

func equals(tb testing.TB, act, exp interface{}) {
	tb.Helper()
	if !reflect.DeepEqual(exp, act) {
		tb.Fatalf("exp: %#v\n\tgot: %#v", exp, act)
	}
}

func newTestQueue(t *testing.T) (*miniredis.Miniredis, *queue.Queue) {
	s, err := miniredis.Run()
	ok(t, err)

	pool := queue.NewPool(s.Addr(), 5)
	t.Cleanup(func() {
		pool.Close()
		s.Close()
	})
	return s, queue.New(pool)
}

func TestPushPopKeepsOrder(t *testing.T) {
	redis, q := newTestQueue(t)

	first := datastructures.StylizeRequest{Uuid: "first", ContentFilename: "/tmp/a", StyleRatio: 0.5}
	second := datastructures.StylizeRequest{Uuid: "second", StyleFilename: "/tmp/b", StyleRatio: 1.0}
	ok(t, q.Push(first))
	ok(t, q.Push(second))
	queued, err := redis.List("stylizeme")
	ok(t, err)
	equals(t, len(queued), 2)

	req, err := q.Pop()
	ok(t, err)
	equals(t, req, first)
	req, err = q.Pop()
	ok(t, err)
	equals(t, req, second)

	_, err = q.Pop()
	equals(t, err, queue.ErrEmpty)
}

func TestResultExpires(t *testing.T) {
	redis, q := newTestQueue(t)

	_, found, err := q.Result("abc")
	ok(t, err)
	equals(t, found, false)

	result := datastructures.StylizeResult{Uuid: "abc", Image: "aGVsbG8=", Width: 2, Height: 3, StyleRatio: 0.3}
	ok(t, q.StoreResult(result))
	equals(t, redis.TTL("stylizeabc"), 3600*time.Second)

	stored, found, err := q.Result("abc")
	ok(t, err)
	equals(t, found, true)
	equals(t, stored, result)
}

func TestRedisFailure(t *testing.T) {
	redis, q := newTestQueue(t)
	redis.SetError("ERR connection refused")

	err := q.Push(datastructures.StylizeRequest{Uuid: "abc"})
	if err == nil {
		t.Fatal("expected an error")
	}
	_, err = q.Pop()
	if err == nil || err == queue.ErrEmpty {
		t.Fatalf("expected a redis error, got %v", err)
	}
	_, _, err = q.Result("abc")
	if err == nil {
		t.Fatal("expected an error")
	}
}
