package output

import (
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/coursemap/pkg/report"
)

// IssuesToTableData converts issues to table format.
func IssuesToTableData(issues []report.Issue) Data {
	caser := cases.Title(language.English)
	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		page := "-"
		if issue.Page > 0 {
			page = strconv.Itoa(issue.Page)
		}
		msg := issue.Message
		if issue.Err != nil {
			msg += ": " + issue.Err.Error()
		}
		rows = append(rows, []string{
			page,
			caser.String(issue.Severity.String()),
			string(issue.Stage),
			issue.Path,
			msg,
		})
	}
	return Data{
		Headers: []string{"Page", "Severity", "Stage", "Path", "Message"},
		Rows:    rows,
	}
}
