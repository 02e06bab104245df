package schema

import "maps"

// Canonical metals.
const (
	Mercury   MetalKind = "Mercury"
	Lead      MetalKind = "Lead"
	Cadmium   MetalKind = "Cadmium"
	Arsenic   MetalKind = "Arsenic"
	Chromium  MetalKind = "Chromium"
	Nickel    MetalKind = "Nickel"
	Copper    MetalKind = "Copper"
	Zinc      MetalKind = "Zinc"
	Iron      MetalKind = "Iron"
	Manganese MetalKind = "Manganese"
)

// AllMetals is the canonical metal order used for detection and output.
var AllMetals = []MetalKind{
	Mercury, Lead, Cadmium, Arsenic, Chromium,
	Nickel, Copper, Zinc, Iron, Manganese,
}

// metalSymbols maps each metal to its chemical symbol.
var metalSymbols = map[MetalKind]string{
	Mercury:   "Hg",
	Lead:      "Pb",
	Cadmium:   "Cd",
	Arsenic:   "As",
	Chromium:  "Cr",
	Nickel:    "Ni",
	Copper:    "Cu",
	Zinc:      "Zn",
	Iron:      "Fe",
	Manganese: "Mn",
}

// defaultStandardLimits holds the regulatory limit Si for each metal in mg/L.
var defaultStandardLimits = map[MetalKind]float64{
	Mercury:   0.001,
	Lead:      0.01,
	Cadmium:   0.003,
	Arsenic:   0.01,
	Chromium:  0.05,
	Nickel:    0.02,
	Copper:    2.0,
	Zinc:      3.0,
	Iron:      0.3,
	Manganese: 0.1,
}

// MetalKeywords lists the header aliases recognized for each metal.
// Aliases are compared after normalization, so "Pb_mg/L" and "pbmgl" are equivalent.
var MetalKeywords = map[MetalKind][]string{
	Mercury:   {"hg", "mercury", "hg_conc", "mercury_conc", "merc", "hg_mg_l"},
	Lead:      {"pb", "lead", "pb_conc", "lead_conc", "pb_mg_l"},
	Cadmium:   {"cd", "cadmium", "cd_conc", "cd_mg_l"},
	Arsenic:   {"as", "arsenic", "as_conc", "as_mg_l"},
	Chromium:  {"cr", "chromium", "cr_conc", "cr_mg_l"},
	Nickel:    {"ni", "nickel", "ni_conc", "ni_mg_l"},
	Copper:    {"cu", "copper", "cu_conc", "cu_mg_l"},
	Zinc:      {"zn", "zinc", "zn_conc", "zn_mg_l"},
	Iron:      {"fe", "iron", "fe_conc", "fe_mg_l"},
	Manganese: {"mn", "manganese", "mn_conc", "mn_mg_l"},
}

// StandardLimits maps a metal to its limit Si in mg/L.
type StandardLimits map[MetalKind]float64

// DefaultStandardLimits returns a fresh copy of the built-in limits table.
func DefaultStandardLimits() StandardLimits {
	out := make(StandardLimits, len(defaultStandardLimits))
	maps.Copy(out, defaultStandardLimits)
	return out
}

// Limit returns Si for the metal and whether the metal is regulated.
func (l StandardLimits) Limit(m MetalKind) (float64, bool) {
	si, ok := l[m]
	return si, ok && si > 0
}

// WithOverrides returns a copy of the table with the given entries replaced.
func (l StandardLimits) WithOverrides(overrides map[MetalKind]float64) StandardLimits {
	out := make(StandardLimits, len(l))
	maps.Copy(out, l)
	maps.Copy(out, overrides)
	return out
}

// Symbol returns the chemical symbol for the metal, or the name itself if unknown.
func (m MetalKind) Symbol() string {
	if s, ok := metalSymbols[m]; ok {
		return s
	}
	return string(m)
}

// ParseMetalKind resolves a metal name or symbol, case-insensitively.
func ParseMetalKind(s string) (MetalKind, bool) {
	n := NormalizeHeader(s)
	for _, m := range AllMetals {
		if NormalizeHeader(string(m)) == n || NormalizeHeader(m.Symbol()) == n {
			return m, true
		}
	}
	return "", false
}
