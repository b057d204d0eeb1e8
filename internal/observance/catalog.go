package observance

// defaultCatalog is the built-in sample catalog. The database is seeded
// from it on first start.
var defaultCatalog = []Event{
	{
		ID:          "islamic_new_year",
		Name:        "Islamic New Year",
		Description: "First day of Muharram and of the Hijri year.",
		Month:       1,
		Day:         1,
		Category:    CategoryCommemorative,
		DisplayIcon: "calendar-star",
		ColorToken:  "emerald",
	},
	{
		ID:          "ashura",
		Name:        "Day of Ashura",
		Description: "Tenth of Muharram. Voluntary fast.",
		Month:       1,
		Day:         10,
		Category:    CategoryRecommended,
		DisplayIcon: "droplet",
		ColorToken:  "teal",
	},
	{
		ID:          "mawlid",
		Name:        "Mawlid an-Nabi",
		Description: "Birth of the Prophet Muhammad.",
		Month:       3,
		Day:         12,
		Category:    CategoryCommemorative,
		DisplayIcon: "star",
		ColorToken:  "green",
	},
	{
		ID:          "isra_miraj",
		Name:        "Isra and Mi'raj",
		Description: "The Night Journey and Ascension.",
		Month:       7,
		Day:         27,
		Category:    CategoryHistorical,
		DisplayIcon: "moon-stars",
		ColorToken:  "indigo",
	},
	{
		ID:          "mid_shaban",
		Name:        "Mid-Sha'ban",
		Description: "Night of the fifteenth of Sha'ban.",
		Month:       8,
		Day:         15,
		Category:    CategoryCommemorative,
		DisplayIcon: "moon",
		ColorToken:  "violet",
	},
	{
		ID:          "ramadan_start",
		Name:        "Start of Ramadan",
		Description: "First day of the fasting month.",
		Month:       9,
		Day:         1,
		Category:    CategoryObligatory,
		DisplayIcon: "crescent",
		ColorToken:  "amber",
	},
	{
		ID:          "battle_of_badr",
		Name:        "Battle of Badr",
		Description: "Anniversary of the Battle of Badr.",
		Month:       9,
		Day:         17,
		Category:    CategoryHistorical,
		DisplayIcon: "flag",
		ColorToken:  "slate",
	},
	{
		ID:          "laylat_al_qadr",
		Name:        "Laylat al-Qadr",
		Description: "The Night of Decree, commonly observed on the 27th of Ramadan.",
		Month:       9,
		Day:         27,
		Category:    CategoryRecommended,
		DisplayIcon: "sparkles",
		ColorToken:  "gold",
	},
	{
		ID:          "eid_al_fitr",
		Name:        "Eid al-Fitr",
		Description: "Festival of breaking the fast.",
		Month:       10,
		Day:         1,
		Category:    CategoryObligatory,
		DisplayIcon: "gift",
		ColorToken:  "rose",
	},
	{
		ID:          "day_of_arafah",
		Name:        "Day of Arafah",
		Description: "Ninth of Dhu al-Hijjah. Voluntary fast for those not on pilgrimage.",
		Month:       12,
		Day:         9,
		Category:    CategoryRecommended,
		DisplayIcon: "mountain",
		ColorToken:  "orange",
	},
	{
		ID:          "eid_al_adha",
		Name:        "Eid al-Adha",
		Description: "Festival of the sacrifice.",
		Month:       12,
		Day:         10,
		Category:    CategoryObligatory,
		DisplayIcon: "kaaba",
		ColorToken:  "red",
	},
}

// DefaultCatalog returns a copy of the built-in catalog.
func DefaultCatalog() []Event {
	out := make([]Event, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// Default builds a registry from the built-in catalog.
// It panics if the built-in catalog is invalid.
func Default() *Registry {
	reg, err := NewRegistry(DefaultCatalog())
	if err != nil {
		panic(err)
	}
	return reg
}
