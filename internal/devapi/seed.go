package devapi

import (
	"time"

	"finitefield.org/heara-web/internal/api"
)

var features = []string{"Smart Control", "Triple Circuit", "Temperature Adjustment", "App Integration"}

// SeedProducts is the demo catalogue.
func SeedProducts() []api.Product {
	return []api.Product{
		{
			ID:        "mark-3-white",
			Name:      "He-Ara Mark 3",
			Model:     "mark3",
			Positions: 3,
			Color:     "white",
			Price:     299.00,
			Features:  append([]string(nil), features...),
			ImageURL:  "https://images.unsplash.com/photo-1513694203232-719a280e022f",
			InStock:   true,
		},
		{
			ID:        "mark-3-black",
			Name:      "He-Ara Mark 3 Black Edition",
			Model:     "mark3",
			Positions: 3,
			Color:     "black",
			Price:     349.00,
			Features:  append(append([]string(nil), features...), "Matte Finish"),
			ImageURL:  "https://images.unsplash.com/photo-1616486338812-3dadae4b4f9d",
			InStock:   true,
		},
	}
}

type seedLead struct {
	lead    api.Lead
	created time.Duration
	updated time.Duration
}

// Seed fills s with the demo catalogue and four leads spread over the past
// ten days, one per status.
func (s *Store) Seed() {
	for _, p := range SeedProducts() {
		s.PutProduct(p)
	}

	day := 24 * time.Hour
	now := s.now()
	seeds := []seedLead{
		{
			lead: api.Lead{
				Name:            "Yossi Cohen",
				Phone:           "050-1234567",
				Email:           "yossi@example.com",
				Message:         "Interested in bulk order for a hotel project.",
				Source:          "website",
				ProductInterest: "mark-3-white",
				Status:          api.StatusNew,
			},
		},
		{
			lead: api.Lead{
				Name:            "Dana Levi",
				Phone:           "052-9876543",
				Email:           "dana@example.com",
				Message:         "Do you ship to Eilat?",
				Source:          "facebook",
				ProductInterest: "mark-3-black",
				Status:          api.StatusContacted,
			},
			created: 2 * day,
			updated: day,
		},
		{
			lead: api.Lead{
				Name:   "Ronit Avraham",
				Phone:  "054-5555555",
				Email:  "ronit@example.com",
				Source: "referral",
				Status: api.StatusConverted,
			},
			created: 5 * day,
			updated: 5 * day,
		},
		{
			lead: api.Lead{
				Name:            "David Biton",
				Phone:           "055-4444444",
				Email:           "david@example.com",
				Message:         "Price is too high for my budget.",
				Source:          "website",
				ProductInterest: "mark-3-white",
				Status:          api.StatusClosed,
			},
			created: 10 * day,
			updated: 10 * day,
		},
	}
	for _, seed := range seeds {
		lead := seed.lead
		lead.ID = s.idGen()
		lead.CreatedAt = api.Timestamp{Time: now.Add(-seed.created)}
		lead.UpdatedAt = api.Timestamp{Time: now.Add(-seed.updated)}
		s.putLead(lead)
	}
}
