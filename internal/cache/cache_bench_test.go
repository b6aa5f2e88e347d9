package cache

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"
)

// frameSizedValue approximates one rendered 24-bar SVG frame.
var frameSizedValue = bytes.Repeat([]byte("<rect x=\"0\" y=\"0\"/>"), 1500)

// BenchmarkInMemoryCache_Get_Hit benchmarks cache Get operation on cache hit.
func BenchmarkInMemoryCache_Get_Hit(b *testing.B) {
	c := NewInMemoryCache()
	ctx := context.Background()
	_ = c.Set(ctx, "frame:1", frameSizedValue, time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = c.Get(ctx, "frame:1")
	}
}

// BenchmarkInMemoryCache_Set benchmarks storing a month of frames.
func BenchmarkInMemoryCache_Set(b *testing.B) {
	c := NewInMemoryCache()
	ctx := context.Background()
	keys := make([]string, 30)
	for i := range keys {
		keys[i] = "frame:" + strconv.Itoa(i+1)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(ctx, keys[i%len(keys)], frameSizedValue, time.Hour)
	}
}

// BenchmarkInMemoryCache_Parallel benchmarks concurrent reads as seen during playback.
func BenchmarkInMemoryCache_Parallel(b *testing.B) {
	c := NewInMemoryCache()
	ctx := context.Background()
	_ = c.Set(ctx, "frame:1", frameSizedValue, time.Hour)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _, _ = c.Get(ctx, "frame:1")
		}
	})
}
