package insights

import (
	"sort"

	"github.com/samber/lo"

	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

// Row is a stored record with its derived sentiment. Sentiment is computed on
// read and never written back to the log.
type Row struct {
	record.Stored
	Sentiment Sentiment `json:"sentiment"`
}

type CompanyCount struct {
	Company string `json:"company"`
	Leads   int    `json:"leads"`
}

type Overview struct {
	TotalContacts    int            `json:"total_contacts"`
	PositiveClients  int            `json:"positive_clients"`
	CompaniesTracked int            `json:"companies_tracked"`
	LeadsByCompany   []CompanyCount `json:"leads_by_company"`
}

type Report struct {
	Rows     []Row    `json:"rows"`
	Overview Overview `json:"overview"`
}

// Build scores every record and computes the dashboard aggregates.
func Build(s *Scorer, records []record.Stored) Report {
	rows := lo.Map(records, func(r record.Stored, _ int) Row {
		return Row{Stored: r, Sentiment: s.Score(record.Value(r.Notes))}
	})
	return Report{Rows: rows, Overview: overview(rows)}
}

func overview(rows []Row) Overview {
	withCompany := lo.Filter(rows, func(r Row, _ int) bool {
		return r.Company != nil && *r.Company != ""
	})
	byCompany := lo.GroupBy(withCompany, func(r Row) string {
		return *r.Company
	})

	counts := lo.MapToSlice(byCompany, func(company string, rs []Row) CompanyCount {
		return CompanyCount{Company: company, Leads: len(rs)}
	})
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Leads != counts[j].Leads {
			return counts[i].Leads > counts[j].Leads
		}
		return counts[i].Company < counts[j].Company
	})

	return Overview{
		TotalContacts: len(rows),
		PositiveClients: lo.CountBy(rows, func(r Row) bool {
			return r.Sentiment.Label == LabelPositive
		}),
		CompaniesTracked: len(byCompany),
		LeadsByCompany:   counts,
	}
}
