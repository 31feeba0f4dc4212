package eventbus

import "github.com/annel0/veinminer/internal/vec"

// Типы событий добычи
const (
	EventClusterFound    = "cluster_found"
	EventBlockRemoved    = "block_removed"
	EventEntityRelocated = "entity_relocated"
	EventHarvestFinished = "harvest_finished"
)

// SourceHarvest обозначает источник событий исполнителя добычи
const SourceHarvest = "veinminer.harvest"

// ClusterFound публикуется после каждого поиска, в том числе пустого
type ClusterFound struct {
	SearchID     string   `json:"search_id"`
	Kind         string   `json:"kind"`
	ResourceType string   `json:"resource_type"`
	Origin       vec.Vec3 `json:"origin"`
	Blocks       int      `json:"blocks"`
	Logs         int      `json:"logs,omitempty"`
	Leaves       int      `json:"leaves,omitempty"`
	Queries      int      `json:"queries"`
	Stop         string   `json:"stop"`
	Plausible    bool     `json:"plausible,omitempty"`
}

// BlockRemoved публикуется при разрушении блока кластера
type BlockRemoved struct {
	SearchID  string   `json:"search_id"`
	Pos       vec.Vec3 `json:"pos"`
	Block     string   `json:"block"`
	Remaining int      `json:"remaining"`
}

// EntityRelocated публикуется, когда выпавший предмет или опыт перенесён к точке сбора
type EntityRelocated struct {
	SearchID string        `json:"search_id"`
	EntityID uint64        `json:"entity_id"`
	Kind     string        `json:"kind"`
	Item     string        `json:"item,omitempty"`
	From     vec.Vec3Float `json:"from"`
	To       vec.Vec3Float `json:"to"`
}

// HarvestFinished публикуется, когда задержка после добычи истекла и состояние сброшено
type HarvestFinished struct {
	SearchID  string `json:"search_id"`
	Removed   int    `json:"removed"`
	Relocated int    `json:"relocated"`
}
