package services

import (
	"fmt"
	"io"
	"strings"

	"phone-scrubber/models"
	"phone-scrubber/utils"
)

type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

func (s *SummaryService) Generate(r *models.RunResult) *models.RunSummary {
	summary := &models.RunSummary{}
	if r == nil {
		return summary
	}

	summary.RunID = r.RunID
	summary.NumbersMatched = r.RemovalSet.Len()
	summary.ListRowsKept = r.UpdatedList.Len()
	summary.ListRowsRemoved = r.RemovedFromList.Len()
	summary.LogsTotal = len(r.Logs)

	for _, l := range r.Logs {
		ls := models.LogSummary{
			Name:           l.Name,
			Rows:           l.Scrubbed.Len(),
			PhoneColumns:   len(l.PhoneColumns),
			RecordsRemoved: l.Removed.Len(),
			CellsCleared:   l.CellsCleared,
		}
		if l.Err != nil {
			ls.Failed = true
			ls.FailureMessage = l.Err.Error()
			summary.LogsFailed++
		} else {
			summary.LogsSucceeded++
		}
		summary.RecordsRemoved += ls.RecordsRemoved
		summary.CellsCleared += ls.CellsCleared
		summary.Logs = append(summary.Logs, ls)
	}

	s.logger.Debug("[summary] run %s: %d matched, %d/%d logs ok",
		summary.RunID, summary.NumbersMatched, summary.LogsSucceeded, summary.LogsTotal)
	return summary
}

func (s *SummaryService) Print(w io.Writer, r *models.RunSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  PHONE SCRUB SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Run ID                 : %s\n", r.RunID)
	fmt.Fprintf(w, "  Phone numbers matched  : \033[1m%d\033[0m\n", r.NumbersMatched)
	fmt.Fprintf(w, "  List rows kept/removed : \033[1m%d\033[0m / \033[1m%d\033[0m\n",
		r.ListRowsKept, r.ListRowsRemoved)
	fmt.Fprintf(w, "  Logs succeeded/failed  : \033[1;32m%d\033[0m / \033[1;31m%d\033[0m\n",
		r.LogsSucceeded, r.LogsFailed)
	fmt.Fprintf(w, "  Records removed        : \033[1m%d\033[0m (%d cells cleared)\n",
		r.RecordsRemoved, r.CellsCleared)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Logs\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Logs) == 0 {
		fmt.Fprintf(w, "  No log files processed\n")
	}
	for i, l := range r.Logs {
		name := truncate(l.Name, 30)
		if l.Failed {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-32s \033[1;31mFAILED\033[0m %s\n",
				i+1, name, truncate(l.FailureMessage, 40))
			continue
		}
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-32s %5d rows  %2d phone cols  \033[1;32m%d removed\033[0m\n",
			i+1, name, l.Rows, l.PhoneColumns, l.RecordsRemoved)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
