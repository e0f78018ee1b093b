package corrections

// Default returns a fresh copy of the built-in tables.
func Default() Static {
	return Static{
		UniqueItems: {
			"English": {
				// A2: Through Sacred Ground
				"423": "Survival Instincts",
				"424": "Survival Skills",
				"425": "Survival Secrets",
				// A5: The King's Feast
				"454": "Poacher's Aim",
				"455": "Warlord's Reach ",
				"456": "Assassin's Haste",
				"457": "Conqueror's Efficiency",
				"458": "Conqueror's Potency",
				"459": "Conqueror's Longevity",
				// A5: Death to Purity
				"560": "Rapid Expansion",
				"780": "Wildfire",
				"777": "Overwhelming Odds",
				"775": "Collateral Damage",
				"779": "Omen on the Winds",
				"781": "Fight for Survival",
				"784": "Ring of Blades",
				"778": "First Snow",
				"783": "Frozen Trail",
				"786": "Inevitability",
				"788": "Spreading Rot",
				"789": "Violent Dead",
				"790": "Hazardous Research",
			},
			"Russian": {
				"423": "Инстинкты выживания",
				"424": "Навыки выживания",
				"425": "Секреты выживания",
				"454": "Браконьерство",
				"455": "Длинные руки ",
				"456": "Бойкий убийца",
				"457": "Смекалка победителя",
				"458": "Могущество победителя",
				"459": "Живучесть победителя",
				"560": "Быстрое расширение",
				"780": "Степной пожар",
				"777": "Подавляющее превосходство",
				"775": "Сопутствующий риск",
				"779": "Знамение ветров",
				"781": "Борьба за жизнь",
				"784": "Кольцо клинков",
				"778": "Первый снег",
				"783": "Мерзлый путь",
				"786": "Неизбежность",
				"788": "Гангрена",
				"789": "Ярость мертвецов",
				"790": "Опасная наука",
			},
		},
		TwoStoneRings: {
			"English": {
				"Metadata/Items/Rings/Ring12": "Two-Stone Ring (ruby and topaz)",
				"Metadata/Items/Rings/Ring13": "Two-Stone Ring (sapphire and topaz)",
				"Metadata/Items/Rings/Ring14": "Two-Stone Ring (ruby and sapphire)",
			},
			"Russian": {
				"Metadata/Items/Rings/Ring12": "Кольцо с двумя камнями (рубин и топаз)",
				"Metadata/Items/Rings/Ring13": "Кольцо с двумя камнями (сапфир и топаз)",
				"Metadata/Items/Rings/Ring14": "Кольцо с двумя камнями (рубин и сапфир)",
			},
			"German": {
				"Metadata/Items/Rings/Ring12": "Zweisteinring (Rubin und Topas)",
				"Metadata/Items/Rings/Ring13": "Zweisteinring (Saphir und Topas)",
				"Metadata/Items/Rings/Ring14": "Zweisteinring (Rubin und Saphir)",
			},
		},
		QuestStateFallback: {
			AnyLanguage: {
				// Fallen from Grace
				"385": "a6q4",
			},
		},
	}
}
