package appointment

import "github.com/salonflow/salon-api/internal/models"

// EstimateDuration sums the midpoint of each service's duration range,
// in minutes. Services with no durations contribute nothing.
func EstimateDuration(services []models.Service) int {
	total := 0
	for _, s := range services {
		total += (s.DurationMin + s.DurationMax) / 2
	}
	return total
}
