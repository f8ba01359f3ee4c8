package domain

// DemographicProfile describes one synthetic consumer persona used to
// parameterize an evaluation request.
type DemographicProfile struct {
	Age        int      `json:"age"`
	Gender     string   `json:"gender"`
	Location   string   `json:"location"`
	Income     string   `json:"income"`
	Occupation string   `json:"occupation"`
	Interests  []string `json:"interests"`
}

// EvaluationResult is the outcome of scoring the product image against
// one demographic profile. Distributions holds one likert probability
// vector per rating question (indices 0..4 map to scale points 1..5);
// MeanRating is the scalar mean derived from them.
type EvaluationResult struct {
	Success       bool               `json:"success"`
	Profile       DemographicProfile `json:"demographic_profile"`
	Feedback      string             `json:"response"`
	Distributions [][]float64        `json:"distributions"`
	MeanRating    float64            `json:"mean_rating"`
}

// DefaultPanelVersion identifies the built-in demographic panel. Bump
// it whenever the panel below changes so recorded sessions stay
// attributable to the panel that produced them.
const DefaultPanelVersion = "v1"

// DefaultPanel is the demographic panel used when a create request
// supplies none.
var DefaultPanel = []DemographicProfile{
	{
		Age:        28,
		Gender:     "female",
		Location:   "San Francisco",
		Income:     "$75k",
		Occupation: "software engineer",
		Interests:  []string{"technology", "fitness", "sustainability"},
	},
	{
		Age:        45,
		Gender:     "male",
		Location:   "Texas",
		Income:     "$55k",
		Occupation: "teacher",
		Interests:  []string{"reading", "gardening", "cooking"},
	},
	{
		Age:        35,
		Gender:     "female",
		Location:   "New York",
		Income:     "$90k",
		Occupation: "marketing manager",
		Interests:  []string{"fashion", "travel", "wine"},
	},
	{
		Age:        67,
		Gender:     "male",
		Location:   "Detroit",
		Income:     "$140k",
		Occupation: "lawyer",
		Interests:  []string{"wine", "skiing", "vintage cars"},
	},
	{
		Age:        22,
		Gender:     "female",
		Location:   "Michigan",
		Income:     "$30k",
		Occupation: "walmart cashier",
		Interests:  []string{"pilates", "social media", "hiking"},
	},
}
