package scoring

// Triage levels, worst first.
const (
	LevelRed    = "RED"
	LevelOrange = "ORANGE"
	LevelYellow = "YELLOW"
	LevelGreen  = "GREEN"
)

// TriageBand is the routing decision attached to a score range.
type TriageBand struct {
	Level           string
	MinScore        int
	Department      string
	TimeToTreatment string
	ClinicalMessage string
	PatientMessage  string
	Confidence      float64
}

// Bands are ordered from the highest threshold down. The last band is the
// default for every score below the others.
var Bands = []TriageBand{
	{
		Level:           LevelRed,
		MinScore:        8,
		Department:      "Emergency + ICU",
		TimeToTreatment: "Immediate",
		ClinicalMessage: "Critical condition detected",
		PatientMessage:  "Your condition is critical. Immediate medical care is required.",
		Confidence:      0.95,
	},
	{
		Level:           LevelOrange,
		MinScore:        5,
		Department:      "Cardiology + ICU Monitoring",
		TimeToTreatment: "Urgent (< 10 minutes)",
		ClinicalMessage: "Multiple serious risk factors detected",
		PatientMessage:  "You need urgent medical attention. Please consult a doctor immediately.",
		Confidence:      0.88,
	},
	{
		Level:           LevelYellow,
		MinScore:        3,
		Department:      "General Medicine",
		TimeToTreatment: "Monitor closely",
		ClinicalMessage: "Moderate risk factors present",
		PatientMessage:  "Some health risks detected. Monitoring and medical advice recommended.",
		Confidence:      0.75,
	},
	{
		Level:           LevelGreen,
		Department:      "Routine Care",
		TimeToTreatment: "No urgency",
		ClinicalMessage: "Vitals within normal range",
		PatientMessage:  "Your vitals look normal. Maintain a healthy lifestyle.",
		Confidence:      0.92,
	},
}

// ClassifyScore returns the first band whose threshold the score meets.
func ClassifyScore(score int) TriageBand {
	last := len(Bands) - 1
	for _, b := range Bands[:last] {
		if score >= b.MinScore {
			return b
		}
	}
	return Bands[last]
}
