package vec

// Vec2 представляет координаты колонки мира в горизонтальной плоскости.
// Y здесь соответствует мировой оси Z.
type Vec2 struct {
	X, Y int
}

// ToSectionCoords преобразует координаты колонки в координаты секции
func (v Vec2) ToSectionCoords() Vec2 {
	return Vec2{X: v.X >> 4, Y: v.Y >> 4} // Деление на 16
}

// At возвращает блок колонки на высоте y
func (v Vec2) At(y int) Vec3 {
	return Vec3{X: v.X, Y: y, Z: v.Y}
}

