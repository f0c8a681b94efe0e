package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShow_FansOutToAllSubscribers(t *testing.T) {
	hub := NewHub()

	ch1, cancel1 := hub.Subscribe()
	defer cancel1()
	ch2, cancel2 := hub.Subscribe()
	defer cancel2()

	published := hub.Success("발행 완료")

	for _, ch := range []<-chan Alert{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, published.ID, got.ID)
			assert.Equal(t, "발행 완료", got.Message)
			assert.Equal(t, SeveritySuccess, got.Severity)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the toast")
		}
	}
}

func TestShow_NonBlockingWithoutSubscribers(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		hub.Warning("URL SLUG를 입력해주세요.")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked with no subscribers")
	}
}

func TestShow_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Info("tick")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestCancel_Idempotent(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe()

	cancel()
	cancel() // second call must not panic on the closed channel

	hub.Error("계정 생성에 실패했습니다.")
}
