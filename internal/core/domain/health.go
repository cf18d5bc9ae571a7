package domain

// HealthCategory is a vegetation health band derived from the index value.
type HealthCategory string

const (
	HealthPoor      HealthCategory = "Poor"
	HealthFair      HealthCategory = "Fair"
	HealthGood      HealthCategory = "Good"
	HealthVeryGood  HealthCategory = "Very Good"
	HealthExcellent HealthCategory = "Excellent"
)

// HealthBand describes one bin of the reference scale.
type HealthBand struct {
	Category    HealthCategory `json:"category"`
	Range       string         `json:"range"`
	Upper       float64        `json:"upper"`
	Color       string         `json:"color"`
	Description string         `json:"description"`
}

// bands are half-open and ordered; the last one is unbounded above.
var bands = []HealthBand{
	{Category: HealthPoor, Range: "0.0 - 0.2", Upper: 0.2, Color: "red", Description: "Bare soil or no vegetation"},
	{Category: HealthFair, Range: "0.2 - 0.4", Upper: 0.4, Color: "orange", Description: "Sparse vegetation or stressed crops"},
	{Category: HealthGood, Range: "0.4 - 0.6", Upper: 0.6, Color: "yellow", Description: "Moderate vegetation health"},
	{Category: HealthVeryGood, Range: "0.6 - 0.8", Upper: 0.8, Color: "green", Description: "Healthy vegetation"},
	{Category: HealthExcellent, Range: "0.8 - 1.0", Upper: 1.0, Color: "emerald", Description: "Very dense and healthy vegetation"},
}

// ClassifyBand returns the first band whose upper bound exceeds value.
// Anything below 0.2, negatives included, is Poor; anything at or above 0.8 is Excellent.
func ClassifyBand(value float64) HealthBand {
	for _, b := range bands[:len(bands)-1] {
		if value < b.Upper {
			return b
		}
	}
	return bands[len(bands)-1]
}

// Classify maps a vegetation index value to its health category.
func Classify(value float64) HealthCategory {
	return ClassifyBand(value).Category
}

// Legend returns the reference scale in ascending order.
func Legend() []HealthBand {
	out := make([]HealthBand, len(bands))
	copy(out, bands)
	return out
}
