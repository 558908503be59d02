package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/smallbiznis/sevadesk/internal/report/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type monthlySummaryResponse struct {
	Period         string                                `json:"period"`
	Label          string                                `json:"label"`
	Summary        reportdomain.Summary                  `json:"summary"`
	Categories     []reportdomain.CategoryBreakdown      `json:"categories"`
	PaymentMethods []reportdomain.PaymentMethodBreakdown `json:"payment_methods"`
}

// DownloadMonthlyReport renders the workbook for the requested month and
// sends it as an attachment. Stored artifacts are left to the scheduler and
// the report command.
func (s *Server) DownloadMonthlyReport(c *gin.Context) {
	year, month, err := periodFromQuery(c.Query("year"), c.Query("month"), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	artifact, content, err := s.reportSvc.Render(c.Request.Context(), year, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+artifact.Name+`"`)
	c.Data(http.StatusOK, xlsxContentType, content)
}

func (s *Server) GetMonthlyReportSummary(c *gin.Context) {
	year, month, err := periodFromQuery(c.Query("year"), c.Query("month"), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.reportSvc.Build(c.Request.Context(), year, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	categories := report.Categories
	if categories == nil {
		categories = []reportdomain.CategoryBreakdown{}
	}
	methods := report.PaymentMethods
	if methods == nil {
		methods = []reportdomain.PaymentMethodBreakdown{}
	}

	c.JSON(http.StatusOK, gin.H{"data": monthlySummaryResponse{
		Period:         report.Period.Key(),
		Label:          report.Period.Label(),
		Summary:        report.Summary,
		Categories:     categories,
		PaymentMethods: methods,
	}})
}
