package cache

import (
	"strconv"
	"testing"
)

func BenchmarkCacheGet(b *testing.B) {
	c := New[string, int](1000)
	for i := 0; i < 100; i++ {
		c.Set(strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("50")
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := New[string, int](1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(strconv.Itoa(i%100), i)
	}
}

func BenchmarkCacheGetOrCreate(b *testing.B) {
	c := New[string, int](1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.GetOrCreate(strconv.Itoa(i%100), func() int {
			return i
		})
	}
}

func BenchmarkCacheParallel(b *testing.B) {
	c := New[int, int](1000)
	for i := 0; i < 1000; i++ {
		c.Set(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Get(i % 1000)
			i++
		}
	})
}

func BenchmarkCacheParallelMixed(b *testing.B) {
	c := New[int, int](1000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%10 == 0 {
				c.Set(i%1000, i)
			} else {
				c.Get(i % 1000)
			}
			i++
		}
	})
}
