// Package lock 提供进程内的按键互斥锁
package lock

import (
	"context"
	"sync"
)

// Local 进程内的按键互斥锁
// 每个键对应一个容量为 1 的 channel，引用计数归零时从 map 中移除
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocal 创建 Local 实例
func NewLocal() *Local {
	return &Local{slots: make(map[string]*slot)}
}

// Lock 获取 key 对应的锁
// 等待期间 ctx 被取消时返回 ctx.Err()，此时不持有锁
// 参数:
//   - ctx: 上下文
//   - key: 锁的键
//
// 返回:
//   - func(): 释放锁，只能调用一次
//   - error: 等待被取消
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(key, s)
		})
	}, nil
}

func (l *Local) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// Len 当前仍被持有或等待中的键数量
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
