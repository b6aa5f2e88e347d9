package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type mockFrameRenderer struct {
	mu       sync.Mutex
	rendered []int
	failDay  int
}

func (m *mockFrameRenderer) FrameSVG(ctx context.Context, day int) ([]byte, error) {
	if day == m.failDay {
		return nil, errors.New("render failed")
	}
	m.mu.Lock()
	m.rendered = append(m.rendered, day)
	m.mu.Unlock()
	return []byte("<svg/>"), nil
}

func TestFrameWarmer_Warm_Success(t *testing.T) {
	renderer := &mockFrameRenderer{}
	warmer := NewFrameWarmer(renderer, nil, 2)

	if err := warmer.Warm(context.Background(), []int{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("Warm() error = %v, want nil", err)
	}
	if len(renderer.rendered) != 5 {
		t.Errorf("rendered %d frames, want 5", len(renderer.rendered))
	}
}

func TestFrameWarmer_Warm_Empty(t *testing.T) {
	warmer := NewFrameWarmer(&mockFrameRenderer{}, nil, 0)
	if err := warmer.Warm(context.Background(), nil); err != nil {
		t.Fatalf("Warm(nil) error = %v, want nil", err)
	}
}

func TestFrameWarmer_Warm_RendererError(t *testing.T) {
	renderer := &mockFrameRenderer{failDay: 2}
	warmer := NewFrameWarmer(renderer, nil, 1)

	err := warmer.Warm(context.Background(), []int{1, 2, 3})
	if err == nil {
		t.Fatal("Warm() error = nil, want non-nil")
	}
	if !strings.Contains(err.Error(), "warm day 2") {
		t.Errorf("Warm() error = %q, want mention of day 2", err)
	}
	if len(renderer.rendered) != 2 {
		t.Errorf("rendered %d frames, want 2", len(renderer.rendered))
	}
}
