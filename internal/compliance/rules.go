package compliance

type Rules struct {
	ForbiddenTitleChars   string              `yaml:"forbidden_title_chars"`
	PromoPhrases          []string            `yaml:"promo_phrases"`
	MedicalClaims         []string            `yaml:"medical_claims"`
	PesticideClaims       []string            `yaml:"pesticide_claims"`
	ControlledSubstances  []string            `yaml:"controlled_substances"`
	EcoClaims             []string            `yaml:"eco_claims"`
	SubjectiveAdjectives  []string            `yaml:"subjective_adjectives"`
	Stopwords             map[string][]string `yaml:"stopwords"`
	TitleRepeatMax        int                 `yaml:"title_repeat_max"`
	TitleRepeatSeverity   string              `yaml:"title_repeat_severity"`
	ListingRepeatMax      int                 `yaml:"listing_repeat_max"`
	ListingRepeatSeverity string              `yaml:"listing_repeat_severity"`
	DensityMaxRatio       float64             `yaml:"density_max_ratio"`
}

func DefaultRules() Rules {
	r := Rules{}
	r.ApplyDefaults()
	return r
}

func (r *Rules) ApplyDefaults() {
	if r.ForbiddenTitleChars == "" {
		r.ForbiddenTitleChars = "!?$%#@<>*~^{}|_"
	}
	if len(r.PromoPhrases) == 0 {
		r.PromoPhrases = []string{
			"best seller", "best selling", "top rated", "top seller", "number one",
			"hot sale", "on sale", "big sale", "discount", "cheap", "cheapest",
			"free shipping", "free gift", "money back", "satisfaction guaranteed",
			"guarantee", "guaranteed", "limited time", "buy now", "great deal", "deal",
			"lowest price", "best price", "100% satisfaction",
		}
	}
	if len(r.MedicalClaims) == 0 {
		r.MedicalClaims = []string{
			"cure", "cures", "heal", "heals", "treat", "treats", "treatment",
			"anti inflammatory", "antiviral", "kills viruses", "prevents disease",
			"fda approved", "relieves pain", "pain relief medicine", "therapeutic",
		}
	}
	if len(r.PesticideClaims) == 0 {
		r.PesticideClaims = []string{
			"antibacterial", "anti bacterial", "antimicrobial", "antifungal",
			"kills germs", "kills bacteria", "disinfect", "disinfects",
			"insect repellent", "pesticide", "mosquito repellent", "repels insects",
		}
	}
	if len(r.ControlledSubstances) == 0 {
		r.ControlledSubstances = []string{
			"cbd", "thc", "cannabis", "marijuana", "kratom", "nicotine", "vape",
		}
	}
	if len(r.EcoClaims) == 0 {
		r.EcoClaims = []string{
			"eco friendly", "environmentally friendly", "biodegradable",
			"compostable", "recyclable", "sustainable", "zero waste", "non toxic",
		}
	}
	if len(r.SubjectiveAdjectives) == 0 {
		r.SubjectiveAdjectives = []string{
			"best", "amazing", "awesome", "perfect", "premium", "luxury",
			"wonderful", "incredible", "ultimate", "excellent", "fantastic",
		}
	}
	if len(r.Stopwords) == 0 {
		r.Stopwords = map[string][]string{
			"en": {"the", "a", "an", "and", "or", "for", "with", "of", "to", "in", "on", "by", "from", "your", "our", "is", "are"},
			"de": {"der", "die", "das", "und", "oder", "für", "mit", "von", "zu", "im", "ein", "eine"},
			"fr": {"le", "la", "les", "et", "ou", "pour", "avec", "de", "du", "des", "un", "une"},
			"es": {"el", "la", "los", "las", "y", "o", "para", "con", "de", "del", "un", "una"},
			"it": {"il", "la", "le", "e", "o", "per", "con", "di", "del", "un", "una"},
		}
	}
	if r.TitleRepeatMax <= 0 {
		r.TitleRepeatMax = 2
	}
	if r.TitleRepeatSeverity == "" {
		r.TitleRepeatSeverity = "error"
	}
	if r.ListingRepeatMax <= 0 {
		r.ListingRepeatMax = 5
	}
	if r.ListingRepeatSeverity == "" {
		r.ListingRepeatSeverity = "warning"
	}
	if r.DensityMaxRatio <= 0 || r.DensityMaxRatio > 1 {
		r.DensityMaxRatio = 0.3
	}
}

// 功能词停用表：profile 语言与英文取并集，避免双语 listing 误报。
func (r Rules) StopwordSet(lang string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range r.Stopwords["en"] {
		set[w] = struct{}{}
	}
	if lang != "" && lang != "en" {
		for _, w := range r.Stopwords[lang] {
			set[w] = struct{}{}
		}
	}
	return set
}
