package vec

// Vec3 представляет координату вокселя (блока) в трёхмерном мире.
// Сравнивается по значению и может использоваться как ключ карты.
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Vec3Float представляет трехмерный вектор с плавающими координатами
type Vec3Float struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// neighbors26 хранит смещения ко всем 26 соседям (кроме нулевого)
var neighbors26 = func() [26]Vec3 {
	var out [26]Vec3
	i := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				out[i] = Vec3{X: dx, Y: dy, Z: dz}
				i++
			}
		}
	}
	return out
}()

// Neighbors26 возвращает смещения 26-окрестности в детерминированном порядке
// (x, затем y, затем z от -1 до 1).
func Neighbors26() [26]Vec3 {
	return neighbors26
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// DistanceSq возвращает квадрат евклидова расстояния до другого вектора
func (v Vec3) DistanceSq(other Vec3) int {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// WithinBox проверяет, что по каждой оси расстояние не превышает r
func (v Vec3) WithinBox(other Vec3, r int) bool {
	return abs(v.X-other.X) <= r && abs(v.Y-other.Y) <= r && abs(v.Z-other.Z) <= r
}

// ToSectionCoords преобразует координаты блока в координаты секции 16x16x16
func (v Vec3) ToSectionCoords() Vec3 {
	return Vec3{X: v.X >> 4, Y: v.Y >> 4, Z: v.Z >> 4} // Деление на 16 с округлением вниз
}

// LocalInSection возвращает локальные координаты внутри секции
func (v Vec3) LocalInSection() Vec3 {
	return Vec3{X: v.X & 0xF, Y: v.Y & 0xF, Z: v.Z & 0xF} // Модуль 16
}

// Center возвращает центр блока
func (v Vec3) Center() Vec3Float {
	return Vec3Float{X: float64(v.X) + 0.5, Y: float64(v.Y) + 0.5, Z: float64(v.Z) + 0.5}
}

// Floor возвращает блок, в котором находится точка.
// Усечение к нулю, как у (int) приведения в клиенте.
func (v Vec3Float) Floor() Vec3 {
	return Vec3{X: int(v.X), Y: int(v.Y), Z: int(v.Z)}
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
