package scoring

import (
	"fmt"
	"math"
)

// TriageFields are the fields the fusion endpoint requires, in declared order.
// The guard checks all of them even though the scorer reads only a subset.
var TriageFields = []string{
	"age", "sex", "pregnancies", "glucose", "blood_pressure", "bmi",
	"chest_pain", "resting_bp", "cholesterol", "diabetes", "max_heart_rate",
	"exercise_angina", "systolic_bp", "diastolic_bp", "temperature",
}

// Vitals are the numeric inputs of the triage scorer. Age, Diabetes and
// ChestPain hold whole numbers truncated toward zero. They stay float64 so
// values beyond the int range keep their sign and magnitude.
type Vitals struct {
	Age          float64
	Glucose      float64
	SystolicBP   float64
	DiastolicBP  float64
	Temperature  float64
	Cholesterol  float64
	MaxHeartRate float64
	Diabetes     float64
	ChestPain    float64
}

// VitalsFrom reads Vitals from a record that already passed Validate.
func VitalsFrom(rec VitalRecord) (Vitals, error) {
	var (
		v   Vitals
		err error
	)
	num := func(name string) float64 {
		if err != nil {
			return 0
		}
		n := rec.Numeric(name)
		if !n.Valid {
			err = &FieldError{Field: name, Reason: ReasonInvalid}
			return 0
		}
		return n.Value
	}
	whole := func(name string) float64 {
		return math.Trunc(num(name))
	}

	v.Age = whole("age")
	v.Glucose = num("glucose")
	v.SystolicBP = num(FieldSystolicBP)
	v.DiastolicBP = num(FieldDiastolicBP)
	v.Temperature = num(FieldTemperature)
	v.Cholesterol = num("cholesterol")
	v.MaxHeartRate = num("max_heart_rate")
	v.Diabetes = whole("diabetes")
	v.ChestPain = whole("chest_pain")
	if err != nil {
		return Vitals{}, fmt.Errorf("reading vitals: %w", err)
	}
	return v, nil
}

// RiskFactor adds Points to the triage score when Applies is true.
type RiskFactor struct {
	Name    string
	Points  int
	Applies func(v Vitals) bool
}

// RiskFactors is the additive triage rule set. Every factor is evaluated.
var RiskFactors = []RiskFactor{
	{Name: "high_glucose", Points: 2, Applies: func(v Vitals) bool { return v.Glucose > 180 }},
	{Name: "high_blood_pressure", Points: 2, Applies: func(v Vitals) bool { return v.SystolicBP > 160 || v.DiastolicBP > 100 }},
	{Name: "high_fever", Points: 2, Applies: func(v Vitals) bool { return v.Temperature > 39 }},
	{Name: "high_cholesterol", Points: 1, Applies: func(v Vitals) bool { return v.Cholesterol > 240 }},
	{Name: "abnormal_heart_rate", Points: 2, Applies: func(v Vitals) bool { return v.MaxHeartRate < 50 || v.MaxHeartRate > 120 }},
	{Name: "diabetes", Points: 1, Applies: func(v Vitals) bool { return v.Diabetes == 1 }},
	{Name: "severe_chest_pain", Points: 3, Applies: func(v Vitals) bool { return v.ChestPain >= 3 }},
	{Name: "elderly", Points: 1, Applies: func(v Vitals) bool { return v.Age > 60 }},
}

// MaxScore is the sum of all risk factor points.
func MaxScore() int {
	total := 0
	for _, f := range RiskFactors {
		total += f.Points
	}
	return total
}

// Assessment is the scorer and classifier output for one record.
type Assessment struct {
	Score   int
	Factors []string
	Band    TriageBand
}

// Score sums the points of every risk factor that applies.
func Score(v Vitals) int {
	return Assess(v).Score
}

// Assess scores v and maps the score to a triage band.
func Assess(v Vitals) Assessment {
	var a Assessment
	for _, f := range RiskFactors {
		if f.Applies(v) {
			a.Score += f.Points
			a.Factors = append(a.Factors, f.Name)
		}
	}
	a.Band = ClassifyScore(a.Score)
	return a
}
