package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeighbors26(t *testing.T) {
	offsets := Neighbors26()
	seen := make(map[Vec3]struct{}, len(offsets))

	for _, d := range offsets {
		assert.False(t, d == Vec3{}, "Нулевое смещение не должно входить в окрестность")
		assert.True(t, d.WithinBox(Vec3{}, 1), "Смещение %v выходит за пределы куба 3x3x3", d)
		seen[d] = struct{}{}
	}

	assert.Len(t, seen, 26, "Все 26 смещений должны быть уникальны")
	assert.Equal(t, Vec3{X: -1, Y: -1, Z: -1}, offsets[0], "Порядок обхода должен начинаться с (-1,-1,-1)")
}

func TestVec3_SectionCoords(t *testing.T) {
	tests := []struct {
		pos     Vec3
		section Vec3
		local   Vec3
	}{
		{Vec3{X: 0, Y: 0, Z: 0}, Vec3{}, Vec3{}},
		{Vec3{X: 17, Y: 33, Z: 15}, Vec3{X: 1, Y: 2, Z: 0}, Vec3{X: 1, Y: 1, Z: 15}},
		{Vec3{X: -1, Y: -64, Z: -17}, Vec3{X: -1, Y: -4, Z: -2}, Vec3{X: 15, Y: 0, Z: 15}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.section, tt.pos.ToSectionCoords(), "Секция для %v", tt.pos)
		assert.Equal(t, tt.local, tt.pos.LocalInSection(), "Локальные координаты для %v", tt.pos)
	}
}

func TestVec3_Distance(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 3}

	assert.Equal(t, 25, a.DistanceSq(b))
	assert.True(t, a.WithinBox(Vec3{X: 4, Y: -1, Z: 0}, 3))
	assert.False(t, a.WithinBox(b, 3))
	assert.Equal(t, b, a.Add(Vec3{X: 3, Y: 4}))
}

func TestVec3Float_Floor(t *testing.T) {
	p := Vec3{X: -3, Y: 70, Z: 12}
	assert.Equal(t, Vec3Float{X: -2.5, Y: 70.5, Z: 12.5}, p.Center())
	assert.Equal(t, Vec3{X: 2, Y: 71, Z: 12}, Vec3Float{X: 2.9, Y: 71.2, Z: 12.99}.Floor())
}
