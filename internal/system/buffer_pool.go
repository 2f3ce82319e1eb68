package system

import (
	"sync"
)

// MaskPool переиспользует временные булевы маски одинаковой длины,
// чтобы дилатация больших страниц не нагружала GC.
type MaskPool struct {
	pools map[int]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &MaskPool{
	pools: make(map[int]*sync.Pool),
}

// GetMask возвращает обнулённый срез длины n из пула или создает новый.
func GetMask(n int) []bool {
	return globalPool.Get(n)
}

// PutMask возвращает срез в пул для повторного использования.
func PutMask(m []bool) {
	globalPool.Put(m)
}

func (p *MaskPool) Get(n int) []bool {
	p.mu.RLock()
	pool, exists := p.pools[n]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[n]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					s := make([]bool, n)
					return &s
				},
			}
			p.pools[n] = pool
		}
		p.mu.Unlock()
	}

	m := *(pool.Get().(*[]bool))
	clear(m)
	return m
}

func (p *MaskPool) Put(m []bool) {
	if m == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[len(m)]
	p.mu.RUnlock()

	if exists {
		pool.Put(&m)
	}
}
