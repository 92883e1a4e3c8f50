package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// exportHeaders match the import header aliases so an export re-imports cleanly.
var exportHeaders = []string{
	"id", "name", "email", "phone", "company", "title", "category", "industry",
	"source", "status", "notes", "lastContact", "nextFollowUp", "score", "createdAt", "updatedAt",
}

// ExportCSV streams the filtered lead list as CSV.
func (h *Handler) ExportCSV(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if !h.validate(c, req) {
		return
	}

	leads := h.svc.List(c.Request.Context(), req)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=leads.csv")
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(exportHeaders); err != nil {
		return
	}
	for _, l := range leads.Items {
		if err := writer.Write(exportRow(l)); err != nil {
			return
		}
	}
	writer.Flush()
}

func exportRow(l transport.LeadResponse) []string {
	return []string{
		l.ID.String(), l.Name, l.Email, l.Phone, l.Company, l.Title, l.Category, l.Industry,
		l.Source, l.Status, l.Notes, formatTime(l.LastContact), formatTime(l.NextFollowUp),
		strconv.Itoa(l.Score), l.CreatedAt.Format(time.RFC3339), l.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
