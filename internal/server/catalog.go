package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/sevadesk/internal/pricing"
)

type catalogEntryResponse struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	DisplayName string            `json:"displayName"`
	BasePrice   string            `json:"basePrice"`
	Prices      map[string]string `json:"prices"`
}

// ListCatalog returns every service with its price per frequency.
func (s *Server) ListCatalog(c *gin.Context) {
	entries := s.catalog.Entries()
	resolver := pricing.NewResolver(s.catalog)
	frequencies := []pricing.Frequency{pricing.FrequencySingle, pricing.FrequencyWeekly, pricing.FrequencyMonthly}

	resp := make([]catalogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		prices := make(map[string]string, len(frequencies))
		for _, frequency := range frequencies {
			amount, err := resolver.ResolveAmount(entry.ID, frequency)
			if err != nil {
				AbortWithError(c, err)
				return
			}
			prices[string(frequency)] = amount.StringFixed(2)
		}
		resp = append(resp, catalogEntryResponse{
			ID:          int(entry.ID),
			Name:        entry.Name,
			DisplayName: entry.DisplayName,
			BasePrice:   entry.BasePrice.StringFixed(2),
			Prices:      prices,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    resp,
		"version": s.catalog.Version(),
	})
}
