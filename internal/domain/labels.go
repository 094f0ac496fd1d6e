package domain

import "strings"

// DifficultyLevel is the closed set of workout difficulties.
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
	DifficultyOther  DifficultyLevel = "Other"
)

var knownDifficulties = []DifficultyLevel{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Difficulty pairs a level with the label it was parsed from.
// Labels outside the known set map to DifficultyOther and keep their text.
type Difficulty struct {
	Level DifficultyLevel
	Label string
}

// ParseDifficulty matches known levels case-insensitively.
func ParseDifficulty(label string) Difficulty {
	label = strings.TrimSpace(label)
	for _, level := range knownDifficulties {
		if strings.EqualFold(label, string(level)) {
			return Difficulty{Level: level, Label: string(level)}
		}
	}
	return Difficulty{Level: DifficultyOther, Label: label}
}

func (d Difficulty) String() string { return d.Label }

// IsZero reports whether no label was supplied.
func (d Difficulty) IsZero() bool { return d.Label == "" }

// ActivityKind is the closed set of activity types.
type ActivityKind string

const (
	ActivityRunning       ActivityKind = "Running"
	ActivityCycling       ActivityKind = "Cycling"
	ActivitySwimming      ActivityKind = "Swimming"
	ActivityWeightlifting ActivityKind = "Weightlifting"
	ActivityYoga          ActivityKind = "Yoga"
	ActivityBoxing        ActivityKind = "Boxing"
	ActivityHIIT          ActivityKind = "HIIT"
	ActivityOther         ActivityKind = "Other"
)

var knownActivityKinds = []ActivityKind{
	ActivityRunning, ActivityCycling, ActivitySwimming, ActivityWeightlifting,
	ActivityYoga, ActivityBoxing, ActivityHIIT,
}

// ActivityType pairs a kind with its label; unknown labels become ActivityOther.
type ActivityType struct {
	Kind  ActivityKind
	Label string
}

// ParseActivityType matches known kinds case-insensitively.
func ParseActivityType(label string) ActivityType {
	label = strings.TrimSpace(label)
	for _, kind := range knownActivityKinds {
		if strings.EqualFold(label, string(kind)) {
			return ActivityType{Kind: kind, Label: string(kind)}
		}
	}
	return ActivityType{Kind: ActivityOther, Label: label}
}

func (a ActivityType) String() string { return a.Label }

// IsZero reports whether no label was supplied.
func (a ActivityType) IsZero() bool { return a.Label == "" }
