package server

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// handleExport streams the current transcript as a CSV download with
// role, content and timestamp columns.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	conv := GetConversation(r.Context())
	history := conv.History()

	filename := fmt.Sprintf("chat_export_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"role", "content", "timestamp"}); err != nil {
		slog.Error("write csv header", "error", err)
		return
	}
	for _, m := range history {
		record := []string{m.Role, m.Content, m.CreatedAt.Format("2006-01-02 15:04:05")}
		if err := cw.Write(record); err != nil {
			slog.Error("write csv record", "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("flush csv", "error", err)
	}
}
