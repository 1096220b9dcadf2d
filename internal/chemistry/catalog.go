package chemistry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Lookup errors.
var (
	ErrUnknownCompound  = errors.New("unknown compound")
	ErrUnknownSubstance = errors.New("unknown substance")
)

// DefaultCompound is the reaction used when a request names none.
const DefaultCompound = "Reference Reaction"

// Compound holds Arrhenius parameters for a reaction.
type Compound struct {
	Name             string  `yaml:"name" json:"name"`
	PreExponential   float64 `yaml:"pre_exponential" json:"pre_exponential"`
	ActivationEnergy float64 `yaml:"activation_energy" json:"activation_energy"`
}

// RateAt returns the Arrhenius rate constant of the compound at temperature T.
func (c Compound) RateAt(temperature float64) float64 {
	return ArrheniusRate(c.PreExponential, c.ActivationEnergy, temperature)
}

// Substance holds physical properties of a pure substance.
type Substance struct {
	Name             string  `yaml:"name" json:"name"`
	MolarMass        float64 `yaml:"molar_mass" json:"molar_mass"`
	Polarity         string  `yaml:"polarity" json:"polarity"`
	IMF              string  `yaml:"imf" json:"imf"`
	BoilingPoint     float64 `yaml:"boiling_point" json:"boiling_point"`
	MeltingPoint     float64 `yaml:"melting_point" json:"melting_point"`
	ENDifference     float64 `yaml:"en_difference" json:"en_difference"`
	VaporPressure298 float64 `yaml:"vapor_pressure_298" json:"vapor_pressure_298"`
	VaporCoefficient float64 `yaml:"vapor_coefficient" json:"vapor_coefficient"`
}

// Element holds periodic trend data.
type Element struct {
	Symbol            string  `yaml:"symbol" json:"symbol"`
	AtomicNumber      int     `yaml:"atomic_number" json:"atomic_number"`
	AtomicRadius      float64 `yaml:"atomic_radius" json:"atomic_radius_pm"`
	Electronegativity float64 `yaml:"electronegativity" json:"electronegativity"`
	IonizationEnergy  float64 `yaml:"ionization_energy" json:"ionization_energy_kj_mol"`
}

type catalogDocument struct {
	Compounds  []Compound  `yaml:"compounds"`
	Substances []Substance `yaml:"substances"`
	Elements   []Element   `yaml:"elements"`
}

// Catalog is an immutable set of compound, substance and element data.
// It is built once and shared by reference; lookups return copies.
type Catalog struct {
	compounds  map[string]Compound
	substances map[string]Substance
	elements   []Element
}

// DefaultCatalog parses the embedded reference data.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog YAML: %w", err)
	}
	if err := validateCatalog(&doc); err != nil {
		return nil, err
	}

	cat := &Catalog{
		compounds:  make(map[string]Compound, len(doc.Compounds)),
		substances: make(map[string]Substance, len(doc.Substances)),
		elements:   append([]Element(nil), doc.Elements...),
	}
	for _, c := range doc.Compounds {
		cat.compounds[c.Name] = c
	}
	for _, s := range doc.Substances {
		cat.substances[s.Name] = s
	}
	sort.Slice(cat.elements, func(i, j int) bool {
		return cat.elements[i].AtomicNumber < cat.elements[j].AtomicNumber
	})
	return cat, nil
}

func validateCatalog(doc *catalogDocument) error {
	if len(doc.Compounds) == 0 {
		return fmt.Errorf("at least one compound must be defined")
	}

	seen := make(map[string]bool)
	for _, c := range doc.Compounds {
		if c.Name == "" {
			return fmt.Errorf("compound name cannot be empty")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate compound name: %s", c.Name)
		}
		seen[c.Name] = true
		if c.PreExponential <= 0 {
			return fmt.Errorf("compound %s: pre_exponential must be positive", c.Name)
		}
		if c.ActivationEnergy <= 0 {
			return fmt.Errorf("compound %s: activation_energy must be positive", c.Name)
		}
	}

	seen = make(map[string]bool)
	for _, s := range doc.Substances {
		if s.Name == "" {
			return fmt.Errorf("substance name cannot be empty")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate substance name: %s", s.Name)
		}
		seen[s.Name] = true
		if s.MolarMass <= 0 {
			return fmt.Errorf("substance %s: molar_mass must be positive", s.Name)
		}
		if s.MeltingPoint <= 0 || s.BoilingPoint <= 0 {
			return fmt.Errorf("substance %s: melting_point and boiling_point must be positive", s.Name)
		}
		if s.MeltingPoint > s.BoilingPoint {
			return fmt.Errorf("substance %s: melting_point (%g) exceeds boiling_point (%g)", s.Name, s.MeltingPoint, s.BoilingPoint)
		}
		if s.VaporPressure298 < 0 {
			return fmt.Errorf("substance %s: vapor_pressure_298 cannot be negative", s.Name)
		}
	}
	return nil
}

// Compound returns the named compound.
func (c *Catalog) Compound(name string) (Compound, error) {
	comp, ok := c.compounds[name]
	if !ok {
		return Compound{}, fmt.Errorf("%w: %q", ErrUnknownCompound, name)
	}
	return comp, nil
}

// Compounds returns all compounds sorted by name.
func (c *Catalog) Compounds() []Compound {
	out := make([]Compound, 0, len(c.compounds))
	for _, comp := range c.compounds {
		out = append(out, comp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Substance returns the named substance.
func (c *Catalog) Substance(name string) (Substance, error) {
	s, ok := c.substances[name]
	if !ok {
		return Substance{}, fmt.Errorf("%w: %q", ErrUnknownSubstance, name)
	}
	return s, nil
}

// Substances returns all substances sorted by name.
func (c *Catalog) Substances() []Substance {
	out := make([]Substance, 0, len(c.substances))
	for _, s := range c.substances {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Elements returns the periodic trend rows ordered by atomic number.
func (c *Catalog) Elements() []Element {
	return append([]Element(nil), c.elements...)
}
