package process

import (
	"math"

	"github.com/copyleftdev/chemsweep/internal/chemistry"
)

// KineticsRequest describes a single-reactant decay to inspect.
type KineticsRequest struct {
	Compound             string  `json:"compound"`
	Order                *int    `json:"order,omitempty"` // defaults to first order
	Temperature          float64 `json:"temperature"`
	InitialConcentration float64 `json:"initial_concentration"`
	Duration             float64 `json:"duration,omitempty"`
	Points               int     `json:"points,omitempty"`
}

// KineticsReport holds rate constant, half-life and the concentration curve.
type KineticsReport struct {
	Compound         string           `json:"compound"`
	Order            string           `json:"order"`
	RateLaw          string           `json:"rate_law"`
	RateConstant     float64          `json:"rate_constant"`
	HalfLife         float64          `json:"half_life"`
	ActivationEnergy float64          `json:"activation_energy"`
	FractionAboveEa  float64          `json:"fraction_above_ea"`
	Series           chemistry.Series `json:"series"`
	Insight          Insight          `json:"insight"`
}

// Kinetics evaluates the integrated rate law of the requested order.
func (a *Advisor) Kinetics(req KineticsRequest) (*KineticsReport, error) {
	if req.Compound == "" {
		req.Compound = chemistry.DefaultCompound
	}
	compound, err := a.catalog.Compound(req.Compound)
	if err != nil {
		return nil, err
	}
	order := chemistry.FirstOrder
	if req.Order != nil {
		order = chemistry.ReactionOrder(*req.Order)
	}
	if order < chemistry.ZerothOrder || order > chemistry.SecondOrder {
		return nil, invalidInput("order must be 0, 1 or 2, got %d", int(order))
	}
	if !(req.Temperature > 0) || math.IsInf(req.Temperature, 0) {
		return nil, invalidInput("temperature must be positive, got %g", req.Temperature)
	}
	if !(req.InitialConcentration > 0) || math.IsInf(req.InitialConcentration, 0) {
		return nil, invalidInput("initial concentration must be positive, got %g", req.InitialConcentration)
	}
	if req.Duration == 0 {
		req.Duration = 50
	}
	if !(req.Duration > 0) || math.IsInf(req.Duration, 0) {
		return nil, invalidInput("duration must be positive, got %g", req.Duration)
	}
	if req.Points == 0 {
		req.Points = 300
	}
	if req.Points < 2 || req.Points > 10000 {
		return nil, invalidInput("points must be between 2 and 10000, got %d", req.Points)
	}

	// Far below Ea/R the rate constant underflows and the half-life is unbounded.
	k := compound.RateAt(req.Temperature)
	halfLife := chemistry.HalfLife(order, req.InitialConcentration, k)
	if !(k > 0) || !isFinite(k) || !isFinite(halfLife) {
		return nil, invalidInput("%s does not react measurably at %g K", compound.Name, req.Temperature)
	}
	a.metrics.ObserveEvaluation("kinetics")

	fraction := chemistry.FractionAboveActivation(compound.ActivationEnergy, req.Temperature)
	return &KineticsReport{
		Compound:         compound.Name,
		Order:            order.String(),
		RateLaw:          order.RateLaw(),
		RateConstant:     k,
		HalfLife:         halfLife,
		ActivationEnergy: compound.ActivationEnergy,
		FractionAboveEa:  fraction,
		Series:           chemistry.ConcentrationSeries(order, req.InitialConcentration, k, req.Duration, req.Points),
		Insight:          fractionInsight(fraction),
	}, nil
}

func fractionInsight(fraction float64) Insight {
	switch {
	case fraction < 0.05:
		return Insight{"activation", LevelWarning, "Few molecules exceed Ea. Increase temperature to accelerate."}
	case fraction < 0.2:
		return Insight{"activation", LevelInfo, "Some molecules exceed Ea. The reaction will be slow."}
	default:
		return Insight{"activation", LevelSuccess, "Many molecules exceed Ea. The reaction is likely efficient."}
	}
}

// TitrationRequest describes a strong acid analyte titrated with a strong base.
type TitrationRequest struct {
	AcidMolarity  float64 `json:"acid_molarity"`
	AcidVolume    float64 `json:"acid_volume"`
	BaseMolarity  float64 `json:"base_molarity"`
	BaseVolume    float64 `json:"base_volume"`
	MaxBaseVolume float64 `json:"max_base_volume,omitempty"`
	Points        int     `json:"points,omitempty"`
}

// TitrationReport holds point readings and the titration and absorbance curves.
type TitrationReport struct {
	AnalyteConcentration float64          `json:"analyte_concentration"`
	PH                   float64          `json:"ph"`
	Hydrogen             float64          `json:"hydrogen"` // mol/L
	Absorbance           float64          `json:"absorbance"`
	EquivalenceVolume    float64          `json:"equivalence_volume"`
	BufferSafe           bool             `json:"buffer_safe"`
	Curve                chemistry.Series `json:"curve"`
	AbsorbanceCurve      chemistry.Series `json:"absorbance_curve"`
}

// Titration evaluates the titration at the added volume and samples both curves.
func (a *Advisor) Titration(req TitrationRequest) (*TitrationReport, error) {
	positive := func(v float64) bool { return v > 0 && !math.IsInf(v, 0) }
	switch {
	case !positive(req.AcidMolarity), !positive(req.AcidVolume), !positive(req.BaseMolarity):
		return nil, invalidInput("acid molarity, acid volume and base molarity must be positive")
	case req.BaseVolume < 0 || math.IsNaN(req.BaseVolume) || math.IsInf(req.BaseVolume, 0):
		return nil, invalidInput("base volume cannot be negative, got %g", req.BaseVolume)
	}
	if req.MaxBaseVolume == 0 {
		req.MaxBaseVolume = math.Max(0.10, req.BaseVolume)
	}
	if !positive(req.MaxBaseVolume) {
		return nil, invalidInput("max base volume must be positive, got %g", req.MaxBaseVolume)
	}
	if req.Points == 0 {
		req.Points = 100
	}
	if req.Points < 2 || req.Points > 10000 {
		return nil, invalidInput("points must be between 2 and 10000, got %d", req.Points)
	}
	a.metrics.ObserveEvaluation("titration")

	t := chemistry.Titration{
		AcidMolarity: req.AcidMolarity,
		AcidVolume:   req.AcidVolume,
		BaseMolarity: req.BaseMolarity,
	}
	analyte := t.AnalyteConcentration()
	ph := t.PHAt(req.BaseVolume)
	return &TitrationReport{
		AnalyteConcentration: analyte,
		PH:                   ph,
		Hydrogen:             chemistry.HydrogenConcentration(ph),
		Absorbance:           chemistry.Absorbance(analyte),
		EquivalenceVolume:    t.EquivalenceVolume(),
		BufferSafe:           a.cfg.SafeWindow.Contains(ph),
		Curve:                t.Curve(req.MaxBaseVolume, req.Points),
		AbsorbanceCurve:      chemistry.AbsorbanceCurve(req.AcidMolarity, req.Points),
	}, nil
}

// SubstanceReport describes a substance at a temperature.
type SubstanceReport struct {
	Substance            chemistry.Substance `json:"substance"`
	Temperature          float64             `json:"temperature"`
	Phase                chemistry.Phase     `json:"phase"`
	AverageKineticEnergy float64             `json:"average_kinetic_energy"`
	IMFStrength          int                 `json:"imf_strength"`
	VaporPressure        float64             `json:"vapor_pressure"`
}

// DescribeSubstance predicts phase and related properties of the named substance.
func (a *Advisor) DescribeSubstance(name string, temperature float64) (*SubstanceReport, error) {
	if !(temperature > 0) || math.IsInf(temperature, 0) {
		return nil, invalidInput("temperature must be positive, got %g", temperature)
	}
	s, err := a.catalog.Substance(name)
	if err != nil {
		return nil, err
	}
	return &SubstanceReport{
		Substance:            s,
		Temperature:          temperature,
		Phase:                chemistry.PredictPhase(&s, temperature),
		AverageKineticEnergy: chemistry.AverageKineticEnergy(temperature),
		IMFStrength:          chemistry.IMFStrength(s.IMF),
		VaporPressure:        chemistry.VaporPressure(&s, temperature),
	}, nil
}
