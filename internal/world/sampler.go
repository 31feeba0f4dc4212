package world

import (
	"errors"

	"github.com/annel0/veinminer/internal/vec"
)

// Ошибки запроса блока. Поиск кластера трактует любую из них как
// «блок не совпадает» и продолжает обход.
var (
	ErrOutOfRange = errors.New("world: координата вне допустимого диапазона высот")
	ErrNotLoaded  = errors.New("world: секция не загружена")
)

// BlockSampler возвращает символьное имя блока по координате.
// Может вернуть ошибку для выгруженных или недопустимых координат.
type BlockSampler interface {
	SampleBlock(pos vec.Vec3) (string, error)
}

// SamplerFunc позволяет использовать обычную функцию как BlockSampler
type SamplerFunc func(pos vec.Vec3) (string, error)

// SampleBlock вызывает f(pos)
func (f SamplerFunc) SampleBlock(pos vec.Vec3) (string, error) {
	return f(pos)
}
