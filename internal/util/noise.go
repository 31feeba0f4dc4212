package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

// Noise представляет детерминированный источник шума Перлина с нормализацией в [0, 1]
type Noise struct {
	p *perlin.Perlin
}

// NewNoise создаёт генератор шума с указанным сидом
func NewNoise(seed int64) *Noise {
	return &Noise{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)}
}

// At2D возвращает значение шума для точки на плоскости (от 0 до 1)
func (n *Noise) At2D(x, y float64) float64 {
	return normalize(n.p.Noise2D(x, y))
}

// At3D возвращает значение шума для точки в пространстве (от 0 до 1)
func (n *Noise) At3D(x, y, z float64) float64 {
	return normalize(n.p.Noise3D(x, y, z))
}

// normalize преобразует значение из [-1, 1] в [0, 1] с отсечением
func normalize(v float64) float64 {
	v = (v + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
