// Package rng реализует детерминированный поток PCG32 (XSH-RR),
// совместимый с генератором, на котором построена генерация чанков.
package rng

import (
	"math"
	"math/bits"
)

const (
	multiplier = 6364136223846793005

	// DefaultIncrement — stream selector по умолчанию (до сдвига inc<<1|1).
	DefaultIncrement = 1442695040888963407
)

// PCG — 64-bit state, 32-bit output.
// Не потокобезопасен: один поток на одну генерацию.
type PCG struct {
	state uint64
	inc   uint64
}

// New создаёт поток с указанным seed и stream selector по умолчанию.
func New(seed uint64) *PCG {
	return NewWithIncrement(seed, DefaultIncrement)
}

// NewWithIncrement создаёт поток с явным stream selector.
// Инициализация повторяет pcg32_srandom_r.
func NewWithIncrement(seed, inc uint64) *PCG {
	p := &PCG{inc: inc<<1 | 1}
	p.Uint32()
	p.state += seed
	p.Uint32()
	return p
}

// Uint32 возвращает следующее 32-битное значение потока.
func (p *PCG) Uint32() uint32 {
	old := p.state
	p.state = old*multiplier + p.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := int(old >> 59)
	return bits.RotateLeft32(xorshifted, -rot)
}

// Rand возвращает равномерное значение из [0, bound).
// Rejection sampling без смещения (pcg32_boundedrand_r).
// bound == 0 возвращает 0 без расхода потока.
func (p *PCG) Rand(bound uint32) uint32 {
	if bound == 0 {
		return 0
	}
	threshold := -bound % bound
	for {
		r := p.Uint32()
		if r >= threshold {
			return r % bound
		}
	}
}

// Intn — удобная обёртка над Rand для int-индексов.
func (p *PCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(p.Rand(uint32(n)))
}

// Randf возвращает float32 в [0, 1].
// Расходует два значения: первое задаёт экспоненту (по числу ведущих нулей),
// второе — мантиссу. Верхняя граница 1.0 достижима, но практически не встречается.
func (p *PCG) Randf() float32 {
	proto := p.Uint32()
	if proto == 0 {
		return 0
	}
	significand := p.Uint32() | 0x80000001
	exp := -32 - bits.LeadingZeros32(proto)
	return float32(math.Ldexp(float64(float32(significand)), exp))
}
