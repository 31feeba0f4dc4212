package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/annel0/veinminer/internal/logging"
	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

const sectionKeyPrefix = "section:"

var (
	// ErrSectionNotFound: секция отсутствует в хранилище
	ErrSectionNotFound = errors.New("storage: секция не найдена")
	// ErrStoreClosed: хранилище уже закрыто
	ErrStoreClosed = errors.New("storage: хранилище не готово")
)

// SectionStore хранит секции мира в BadgerDB. Значение содержит снапшот секции
// в JSON, сжатый zstd.
type SectionStore struct {
	db      *badger.DB
	dbPath  string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	mutex   sync.RWMutex
	isReady bool
}

// NewSectionStore открывает хранилище в dataPath/world. Если logger равен
// nil, логирование BadgerDB отключается.
func NewSectionStore(dataPath string, logger *logging.Logger) (*SectionStore, error) {
	dbPath := filepath.Join(dataPath, "world")
	opts := badger.DefaultOptions(dbPath)
	if logger != nil {
		opts.Logger = badgerLogger{l: logger}
	} else {
		opts.Logger = nil
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &SectionStore{
		db:      db,
		dbPath:  dbPath,
		encoder: encoder,
		decoder: decoder,
		isReady: true,
	}, nil
}

// Path возвращает каталог базы
func (ss *SectionStore) Path() string {
	return ss.dbPath
}

// Close закрывает хранилище
func (ss *SectionStore) Close() error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if !ss.isReady {
		return nil
	}

	ss.isReady = false
	ss.decoder.Close()
	if err := ss.encoder.Close(); err != nil {
		logging.Warn("zstd encoder close: %v", err)
	}
	return ss.db.Close()
}

func sectionKey(coords vec.Vec3) []byte {
	return []byte(fmt.Sprintf("%s%d:%d:%d", sectionKeyPrefix, coords.X, coords.Y, coords.Z))
}

func parseSectionKey(key []byte) (vec.Vec3, error) {
	var c vec.Vec3
	s := strings.TrimPrefix(string(key), sectionKeyPrefix)
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &c.X, &c.Y, &c.Z); err != nil {
		return vec.Vec3{}, fmt.Errorf("ключ секции %q: %w", key, err)
	}
	return c, nil
}

func (ss *SectionStore) encode(section *world.Section) ([]byte, error) {
	data, err := json.Marshal(section.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации секции: %w", err)
	}
	return ss.encoder.EncodeAll(data, nil), nil
}

func (ss *SectionStore) decode(val []byte) (*world.Section, error) {
	data, err := ss.decoder.DecodeAll(val, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки секции: %w", err)
	}

	var snap world.SectionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("ошибка десериализации секции: %w", err)
	}
	return world.SectionFromSnapshot(snap), nil
}

// Save сохраняет секцию целиком и очищает её список изменений
func (ss *SectionStore) Save(section *world.Section) error {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isReady {
		return ErrStoreClosed
	}

	val, err := ss.encode(section)
	if err != nil {
		return err
	}

	err = ss.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sectionKey(section.Coords), val)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	section.ClearChanges()
	return nil
}

// SaveGrid сохраняет изменённые секции сетки одной транзакцией.
// Возвращает число сохранённых секций.
func (ss *SectionStore) SaveGrid(grid *world.Grid) (int, error) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isReady {
		return 0, ErrStoreClosed
	}

	dirty := grid.DirtySections()
	if len(dirty) == 0 {
		return 0, nil
	}

	wb := ss.db.NewWriteBatch()
	defer wb.Cancel()

	for _, section := range dirty {
		val, err := ss.encode(section)
		if err != nil {
			return 0, err
		}
		if err := wb.Set(sectionKey(section.Coords), val); err != nil {
			return 0, fmt.Errorf("ошибка записи секции %v: %w", section.Coords, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	for _, section := range dirty {
		section.ClearChanges()
	}
	logging.Debug("💾 Сохранено секций: %d", len(dirty))
	return len(dirty), nil
}

// Load читает секцию. Если её нет, возвращает ErrSectionNotFound.
func (ss *SectionStore) Load(coords vec.Vec3) (*world.Section, error) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isReady {
		return nil, ErrStoreClosed
	}

	var val []byte
	err := ss.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sectionKey(coords))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	return ss.decode(val)
}

// LoadInto загружает указанные секции в сетку. Без аргументов загружает все
// сохранённые секции. Отсутствующие секции пропускаются. Возвращает число
// загруженных секций.
func (ss *SectionStore) LoadInto(grid *world.Grid, coords ...vec.Vec3) (int, error) {
	if len(coords) == 0 {
		all, err := ss.List()
		if err != nil {
			return 0, err
		}
		coords = all
	}

	loaded := 0
	for _, c := range coords {
		section, err := ss.Load(c)
		if errors.Is(err, ErrSectionNotFound) {
			continue
		}
		if err != nil {
			return loaded, err
		}
		grid.LoadSection(section)
		loaded++
	}
	return loaded, nil
}

// List возвращает координаты всех сохранённых секций
func (ss *SectionStore) List() ([]vec.Vec3, error) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isReady {
		return nil, ErrStoreClosed
	}

	var coords []vec.Vec3
	err := ss.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(sectionKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			c, err := parseSectionKey(it.Item().Key())
			if err != nil {
				logging.Warn("Пропущен ключ: %v", err)
				continue
			}
			coords = append(coords, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка обхода BadgerDB: %w", err)
	}
	return coords, nil
}

// Delete удаляет секцию из хранилища
func (ss *SectionStore) Delete(coords vec.Vec3) error {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isReady {
		return ErrStoreClosed
	}

	err := ss.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sectionKey(coords))
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}
	return nil
}
