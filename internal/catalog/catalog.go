package catalog

import "barbershop-backend/internal/models"

type Service struct {
	Name            string           `json:"name"`
	Title           models.Localized `json:"title"`
	DurationMinutes int              `json:"durationMinutes"`
	Price           int              `json:"price"`
}

var services = []Service{
	{Name: "Hair Cut", Title: models.Localized{AR: "قص شعر", EN: "Hair Cut", HE: "תספורת"}, DurationMinutes: 30, Price: 60},
	{Name: "Beard Trim", Title: models.Localized{AR: "تشذيب اللحية", EN: "Beard Trim", HE: "עיצוב זקן"}, DurationMinutes: 20, Price: 40},
	{Name: "Hair Cut + Beard Trim", Title: models.Localized{AR: "قص شعر + لحية", EN: "Hair Cut + Beard Trim", HE: "תספורת + זקן"}, DurationMinutes: 50, Price: 90},
	{Name: "Kids Cut", Title: models.Localized{AR: "قص شعر أطفال", EN: "Kids Cut", HE: "תספורת ילדים"}, DurationMinutes: 25, Price: 45},
	{Name: "Hair Coloring", Title: models.Localized{AR: "صبغ الشعر", EN: "Hair Coloring", HE: "צביעת שיער"}, DurationMinutes: 60, Price: 120},
	{Name: "Shave", Title: models.Localized{AR: "حلاقة", EN: "Shave", HE: "גילוח"}, DurationMinutes: 20, Price: 35},
}

func All() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

func Exists(name string) bool {
	_, ok := Find(name)
	return ok
}

func Find(name string) (Service, bool) {
	for _, s := range services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}
