/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-14 01:41:43
 * @LastEditTime: 2026-01-17 10:30:05
 * @LastEditors: 安知鱼
 */
package utility

import "sync"

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// KeyLocker 提供了一个基于字符串键（例如内容哈希）的锁机制。
// 同一个键上的操作在进程内串行执行，不同键之间互不影响。
type KeyLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

// NewKeyLocker 创建一个新的 KeyLocker 实例。
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{
		locks: make(map[string]*keyLock),
	}
}

// Lock 为给定的键获取一个锁，已被持有时阻塞等待。
func (l *KeyLocker) Lock(key string) {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &keyLock{}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
}

// Unlock 释放给定键的锁，没有等待者时回收该键。
func (l *KeyLocker) Unlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		return
	}
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, key)
	}
	lock.mu.Unlock()
}

// Size 返回当前被跟踪的键数量
func (l *KeyLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
