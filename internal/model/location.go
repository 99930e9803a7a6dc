package model

import "math"

// Position — координаты тайла внутри чанка.
// Value type, передаётся по значению (immutable).
type Position struct {
	X int32
	Y int32
}

// NewPosition создаёт Position с указанными координатами.
func NewPosition(x, y int32) Position {
	return Position{X: x, Y: y}
}

// WithCoordinates возвращает новый Position с обновлёнными координатами (immutable pattern).
func (p Position) WithCoordinates(x, y int32) Position {
	p.X = x
	p.Y = y
	return p
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
func (p Position) DistanceSquared(other Position) int64 {
	dx := int64(p.X) - int64(other.X)
	dy := int64(p.Y) - int64(other.Y)
	return dx*dx + dy*dy
}

// Distance — евклидово расстояние в тайлах.
func (p Position) Distance(other Position) float64 {
	return math.Sqrt(float64(p.DistanceSquared(other)))
}

// InRange проверяет, что other не дальше r тайлов.
func (p Position) InRange(other Position, r float32) bool {
	if r < 0 {
		return false
	}
	rr := float64(r)
	return float64(p.DistanceSquared(other)) <= rr*rr
}
