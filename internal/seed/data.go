package seed

import "example.com/octofit/internal/domain"

func ptr[T any](v T) *T { return &v }

var teams = []domain.CreateTeamInput{
	{Name: "Team Marvel", Description: ptr("Assemble! The mightiest heroes of the Marvel Universe")},
	{Name: "Team DC", Description: ptr("Justice League - Defenders of truth and justice")},
}

var heroes = []domain.CreateUserInput{
	{Name: "Iron Man", Email: "tony.stark@marvel.com", Password: "arc_reactor_3000", Team: ptr("Team Marvel")},
	{Name: "Captain America", Email: "steve.rogers@marvel.com", Password: "shield_forever", Team: ptr("Team Marvel")},
	{Name: "Thor", Email: "thor@asgard.marvel.com", Password: "mjolnir_worthy", Team: ptr("Team Marvel")},
	{Name: "Black Widow", Email: "natasha.romanoff@marvel.com", Password: "red_room_graduate", Team: ptr("Team Marvel")},
	{Name: "Hulk", Email: "bruce.banner@marvel.com", Password: "angry_scientist", Team: ptr("Team Marvel")},
	{Name: "Superman", Email: "clark.kent@dc.com", Password: "kryptonian_power", Team: ptr("Team DC")},
	{Name: "Batman", Email: "bruce.wayne@dc.com", Password: "dark_knight_rises", Team: ptr("Team DC")},
	{Name: "Wonder Woman", Email: "diana.prince@dc.com", Password: "amazon_warrior", Team: ptr("Team DC")},
	{Name: "The Flash", Email: "barry.allen@dc.com", Password: "speed_force_forever", Team: ptr("Team DC")},
	{Name: "Aquaman", Email: "arthur.curry@dc.com", Password: "atlantis_king", Team: ptr("Team DC")},
}

// session is an activity template; hero indexes into heroes.
type session struct {
	hero     int
	kind     string
	duration int
	calories int
	distance *float64
}

var sessions = []session{
	{0, "Weightlifting", 60, 450, nil},
	{0, "Running", 45, 550, ptr(8.5)},
	{1, "Running", 90, 800, ptr(15.0)},
	{1, "Boxing", 60, 650, nil},
	{2, "Weightlifting", 120, 900, nil},
	{2, "HIIT", 45, 600, nil},
	{3, "Yoga", 60, 350, nil},
	{3, "Running", 60, 600, ptr(10.0)},
	{4, "Weightlifting", 90, 850, nil},
	{4, "HIIT", 30, 500, nil},
	{5, "Running", 120, 1000, ptr(20.0)},
	{5, "Weightlifting", 90, 750, nil},
	{6, "Boxing", 90, 900, nil},
	{6, "HIIT", 60, 700, nil},
	{7, "Weightlifting", 75, 650, nil},
	{7, "Running", 60, 600, ptr(10.0)},
	{8, "Running", 30, 700, ptr(12.5)},
	{8, "HIIT", 45, 650, nil},
	{9, "Swimming", 90, 800, ptr(5.0)},
	{9, "Weightlifting", 60, 550, nil},
}

var workouts = []domain.CreateWorkoutInput{
	{
		Name:           "Hero Strength Training",
		Description:    "Build strength like a superhero with compound movements",
		Difficulty:     "Hard",
		DurationMin:    ptr(60),
		Category:       "Strength",
		RecommendedFor: ptr("Building muscle and power"),
	},
	{
		Name:           "Speed Force Cardio",
		Description:    "High-intensity cardio to boost your speed and endurance",
		Difficulty:     "Medium",
		DurationMin:    ptr(45),
		Category:       "Cardio",
		RecommendedFor: ptr("Improving cardiovascular fitness"),
	},
	{
		Name:           "Warrior Yoga Flow",
		Description:    "Flexibility and mindfulness for balanced heroes",
		Difficulty:     "Easy",
		DurationMin:    ptr(30),
		Category:       "Flexibility",
		RecommendedFor: ptr("Recovery and flexibility"),
	},
	{
		Name:           "Combat Training HIIT",
		Description:    "Intense interval training for battle readiness",
		Difficulty:     "Hard",
		DurationMin:    ptr(30),
		Category:       "HIIT",
		RecommendedFor: ptr("Fat burning and conditioning"),
	},
	{
		Name:           "Aquatic Power Swim",
		Description:    "Swimming workout for full-body conditioning",
		Difficulty:     "Medium",
		DurationMin:    ptr(45),
		Category:       "Swimming",
		RecommendedFor: ptr("Low-impact full-body workout"),
	},
	{
		Name:           "Shield Bearer Endurance",
		Description:    "Long-distance running for stamina building",
		Difficulty:     "Medium",
		DurationMin:    ptr(60),
		Category:       "Running",
		RecommendedFor: ptr("Building endurance"),
	},
}
