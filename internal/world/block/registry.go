package block

// Air задаёт имя пустого блока
const Air = "air"

// Drop описывает, что остаётся в мире после разрушения блока
type Drop struct {
	Item string // Имя выпадающего предмета (пусто — ничего)
	XP   int    // Количество сфер опыта
}

// DropRule выбирает выпадение по имени блока
type DropRule func(name string) (Drop, bool)

var registry = make(map[string]Drop)

var rules []DropRule

// Register задаёт выпадение для конкретного имени блока
func Register(name string, drop Drop) {
	registry[name] = drop
}

// RegisterRule добавляет правило выпадения для группы блоков.
// Правила проверяются в порядке регистрации после точных записей.
func RegisterRule(rule DropRule) {
	rules = append(rules, rule)
}

// Get возвращает выпадение для указанного блока
func Get(name string) (Drop, bool) {
	if drop, exists := registry[name]; exists {
		return drop, true
	}
	for _, rule := range rules {
		if drop, ok := rule(name); ok {
			return drop, true
		}
	}
	return Drop{}, false
}

// DropFor возвращает выпадение блока; по умолчанию блок выпадает сам собой
func DropFor(name string) Drop {
	if name == Air || name == "" {
		return Drop{}
	}
	if drop, ok := Get(name); ok {
		return drop
	}
	return Drop{Item: name}
}

func init() {
	Register(Air, Drop{})
	Register("coal_ore", Drop{Item: "coal", XP: 1})
	Register("diamond_ore", Drop{Item: "diamond", XP: 5})
	Register("lapis_ore", Drop{Item: "lapis_lazuli", XP: 3})
	Register("redstone_ore", Drop{Item: "redstone", XP: 2})
	Register("emerald_ore", Drop{Item: "emerald", XP: 5})

	// Варианты руды выпадают так же, как базовая руда
	RegisterRule(func(name string) (Drop, bool) {
		if !IsOre(name) {
			return Drop{}, false
		}
		base := NormalizeOreType(name)
		if drop, exists := registry[base+oreSuffix]; exists {
			return drop, true
		}
		return Drop{Item: "raw_" + base}, true
	})
	// Листва обычно ничего не оставляет
	RegisterRule(func(name string) (Drop, bool) {
		if IsLeaves(name) {
			return Drop{}, true
		}
		return Drop{}, false
	})
}
