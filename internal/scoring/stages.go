package scoring

// Request field names read by the staged classifiers.
const (
	FieldSystolicBP  = "systolic_bp"
	FieldDiastolicBP = "diastolic_bp"
	FieldTemperature = "temperature"
	FieldHemoglobin  = "hemoglobin"
)

// atLeast matches when input i is >= threshold.
func atLeast(i int, threshold float64) func([]float64) bool {
	return func(v []float64) bool { return v[i] >= threshold }
}

// Hypertension stages systolic/diastolic pressure (mmHg).
var Hypertension = MustStager("hypertension",
	[]string{FieldSystolicBP, FieldDiastolicBP},
	[]Rule{
		{Stage: "Hypertensive Crisis", Risk: 0.95, When: func(v []float64) bool { return v[0] >= 180 || v[1] >= 120 }},
		{Stage: "Stage 2", Risk: 0.75, When: func(v []float64) bool { return v[0] >= 140 || v[1] >= 90 }},
		{Stage: "Stage 1", Risk: 0.50, When: func(v []float64) bool { return v[0] >= 130 || v[1] >= 80 }},
		{Stage: "Elevated", Risk: 0.30, When: func(v []float64) bool { return v[0] >= 120 && v[1] < 80 }},
		{Stage: "Normal", Risk: 0.10},
	},
)

// Infection stages body temperature (°C).
var Infection = MustStager("infection",
	[]string{FieldTemperature},
	[]Rule{
		{Stage: "Critical Fever", Risk: 0.95, When: atLeast(0, 40.0)},
		{Stage: "High Fever", Risk: 0.80, When: atLeast(0, 39.0)},
		{Stage: "Moderate Fever", Risk: 0.65, When: atLeast(0, 38.5)},
		{Stage: "Mild Fever", Risk: 0.50, When: atLeast(0, 38.0)},
		{Stage: "Low-Grade Fever", Risk: 0.35, When: atLeast(0, 37.5)},
		{Stage: "Normal", Risk: 0.10, When: atLeast(0, 36.1)},
		{Stage: "Mild Hypothermia", Risk: 0.50, When: atLeast(0, 35.0)},
		{Stage: "Severe Hypothermia", Risk: 0.90},
	},
)

// Anemia grades hemoglobin (g/dL) into an urgency level. It has no risk
// probability attached.
var Anemia = MustStager("anemia",
	[]string{FieldHemoglobin},
	[]Rule{
		{Stage: "LOW", When: atLeast(0, 11)},
		{Stage: "MODERATE", When: atLeast(0, 9)},
		{Stage: "HIGH", When: atLeast(0, 7)},
		{Stage: "CRITICAL"},
	},
	WithoutRisk(),
)
