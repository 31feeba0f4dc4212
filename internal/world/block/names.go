package block

import "strings"

// Маркеры вариантов в символьных именах блоков
const (
	litPrefix       = "lit_"
	deepslatePrefix = "deepslate_"
	strippedPrefix  = "stripped_"
	oreSuffix       = "_ore"
	logSuffix       = "_log"
	stemSuffix      = "_stem"
	leavesSuffix    = "_leaves"
)

// NormalizeOreType возвращает базовый тип руды по имени блока.
// Сначала снимается префикс "lit_", затем "deepslate_", затем всё начиная
// с первого "_ore". Если "_ore" не найден, возвращается остаток без изменений.
//
//	NormalizeOreType("lit_deepslate_redstone_ore") == "redstone"
func NormalizeOreType(name string) string {
	name = strings.TrimPrefix(name, litPrefix)
	name = strings.TrimPrefix(name, deepslatePrefix)

	if idx := strings.Index(name, oreSuffix); idx > 0 {
		return name[:idx]
	}
	return name
}

// MatchesOre проверяет, что имя блока точно совпадает с одним из четырёх
// вариантов руды типа oreType.
func MatchesOre(name, oreType string) bool {
	switch name {
	case oreType + oreSuffix,
		deepslatePrefix + oreType + oreSuffix,
		litPrefix + oreType + oreSuffix,
		litPrefix + deepslatePrefix + oreType + oreSuffix:
		return true
	}
	return false
}

// NormalizeWoodType возвращает тип древесины по имени бревна или стебля
func NormalizeWoodType(name string) string {
	if strings.HasSuffix(name, logSuffix) {
		return name[:len(name)-len(logSuffix)]
	}
	if strings.HasSuffix(name, stemSuffix) {
		return name[:len(name)-len(stemSuffix)]
	}
	return name
}

// MatchesLeaves проверяет, что блок является листвой указанной древесины
func MatchesLeaves(name, woodType string) bool {
	return name == woodType+leavesSuffix
}

// MatchesLogOrWood проверяет, что блок является бревном или стеблем
// указанной древесины, включая обтёсанные варианты.
func MatchesLogOrWood(name, woodType string) bool {
	switch name {
	case woodType + logSuffix,
		woodType + stemSuffix,
		strippedPrefix + woodType + logSuffix,
		strippedPrefix + woodType + stemSuffix:
		return true
	}
	return false
}

// IsOre сообщает, запускает ли разрушение блока поиск жилы
func IsOre(name string) bool {
	return strings.HasSuffix(name, oreSuffix)
}

// IsLogOrStem сообщает, запускает ли разрушение блока поиск дерева
func IsLogOrStem(name string) bool {
	return strings.HasSuffix(name, logSuffix) || strings.HasSuffix(name, stemSuffix)
}

// IsLeaves сообщает, является ли блок листвой любого дерева
func IsLeaves(name string) bool {
	return strings.HasSuffix(name, leavesSuffix)
}
