package extract

import (
	"fmt"
	"strings"
)

const basePrompt = `Analyze this language school brochure and extract the school information. Focus on:
- School name
- Location details
- Course information
- Pricing
- Accommodation options
- Any terms or conditions

If there is more than one location, provide information for all locations.
If there is more than one course, provide information for all courses, including the prices and any additional fees.

If more courses are available than fit in one response, set "repeat" to true and the remaining courses will be requested in a follow-up.

Respond with one JSON object of this shape:
{
    "school_name": "Centre of English Studies",
    "locations": [
        {
            "city": "Dublin",
            "country": "IE",
            "address": "...",
            "courses": [
                {
                    "name": "Standard General English",
                    "lessons_per_week": 20,
                    "description": "Morning classes Mon-Fri",
                    "prices": [
                        {"duration": "2-4 weeks", "price": "€355", "currency": "EUR"}
                    ]
                }
            ],
            "accommodations": [
                {
                    "type": "Homestay",
                    "price_per_week": "€280",
                    "description": "Single room, half board",
                    "supplements": {"Summer": "€35/week"}
                }
            ],
            "additional_fees": {"registration": "€85"}
        }
    ],
    "terms": {"cancellation": "14 days notice required"},
    "repeat": false
}
`

// Prompt builds the instruction text for a page.
func Prompt(p Page) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	if p.Total > 0 {
		fmt.Fprintf(&b, "\nOnly extract information shown on page %d of %d.\n", p.Number, p.Total)
	}
	if len(p.Previous) > 0 {
		b.WriteString("\nProvide the remaining courses that were not included in the previous responses.\nPrevious responses were:\n")
		for _, prev := range p.Previous {
			b.Write(prev)
			b.WriteString("\n")
		}
	}
	return b.String()
}
