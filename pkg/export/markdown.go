package export

import (
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/coursemap/pkg/school"
)

// WriteMarkdown renders a summary of s: one section per location with a
// course price table, accommodations and fees, then the school terms.
func WriteMarkdown(w io.Writer, s *school.School) error {
	if s == nil {
		s = &school.School{}
	}
	name := s.Name
	if name == "" {
		name = "Unnamed school"
	}

	doc := md.NewMarkdown(w)
	doc.H1(name)
	locations, courses, prices := s.Counts()
	doc.PlainTextf("%d locations, %d courses, %d prices", locations, courses, prices).LF()

	for _, loc := range s.Locations {
		doc.H2(fmt.Sprintf("%s, %s", loc.City, loc.Country))
		if loc.Address != "" {
			doc.PlainText(md.Italic(loc.Address)).LF()
		}

		if len(loc.Courses) > 0 {
			doc.H3("Courses")
			var rows [][]string
			for _, c := range loc.Courses {
				if len(c.Prices) == 0 {
					rows = append(rows, []string{c.Name, c.LessonsPerWeek, "", "", "", c.TotalFee.String()})
					continue
				}
				for _, p := range c.Prices {
					rows = append(rows, []string{c.Name, c.LessonsPerWeek, p.Duration, p.Price, p.Currency, c.TotalFee.String()})
				}
			}
			doc.Table(md.TableSet{
				Header: []string{"Course", "Lessons/Week", "Duration", "Price", "Currency", "Total Fee"},
				Rows:   rows,
			})
		}

		if len(loc.Accommodations) > 0 {
			doc.H3("Accommodations")
			items := make([]string, 0, len(loc.Accommodations))
			for _, a := range loc.Accommodations {
				item := md.Bold(a.Type)
				if a.PricePerWeek != "" {
					item += ": " + strings.TrimSpace(a.PricePerWeek+" "+a.Currency) + " per week"
				}
				items = append(items, item)
			}
			doc.BulletList(items...)
		}

		if len(loc.AdditionalFees) > 0 {
			doc.H3("Additional Fees")
			items := make([]string, 0, len(loc.AdditionalFees))
			for _, f := range loc.AdditionalFees {
				items = append(items, strings.TrimSpace(fmt.Sprintf("%s: %s %s", f.Name, f.Price, f.Currency)))
			}
			doc.BulletList(items...)
		}
	}

	if len(s.Terms) > 0 {
		doc.H2("Terms")
		items := make([]string, 0, len(s.Terms))
		for _, t := range s.Terms {
			items = append(items, md.Bold(t.Name)+": "+t.Value)
		}
		doc.BulletList(items...)
	}
	return doc.Build()
}
