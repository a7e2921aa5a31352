package excel

import (
	"fmt"
	"io"
	"log"
	"strings"

	"prodflow/domain/core"
	"prodflow/domain/initiative"

	"github.com/xuri/excelize/v2"
)

// BacklogSheet is the worksheet the export writes
const BacklogSheet = "Backlog"

var backlogHeader = []interface{}{
	"Rank", "Title", "Type", "Score", "Reach", "Impact", "Confidence", "Effort",
	"Owner", "Project", "Tags", "Created",
}

// BacklogExporter writes the ranked backlog as an XLSX workbook
type BacklogExporter struct{}

// NewBacklogExporter creates an exporter
func NewBacklogExporter() *BacklogExporter {
	return &BacklogExporter{}
}

// Export writes ranked to w, one row per initiative after a bold header row
func (e *BacklogExporter) Export(w io.Writer, ranked []initiative.Ranked) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", BacklogSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(BacklogSheet, "A1", &backlogHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(backlogHeader))
	if err := f.SetCellStyle(BacklogSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(BacklogSheet, "B", "B", 48); err != nil {
		return fmt.Errorf("failed to size title column: %w", err)
	}

	for idx, r := range ranked {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}
		row := backlogRow(r)
		if err := f.SetSheetRow(BacklogSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", idx+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	log.Printf("[BacklogExporter] exported %d backlog rows", len(ranked))
	return nil
}

func backlogRow(r initiative.Ranked) []interface{} {
	it := r.Initiative
	created := ""
	if !it.CreatedAt.IsZero() {
		created = it.CreatedAt.Format(core.DateLayout)
	}
	return []interface{}{
		r.Rank,
		it.Title,
		string(it.ItemType),
		r.Score,
		it.Reach,
		it.Impact,
		it.Confidence,
		it.Effort,
		it.OwnerID.String(),
		it.ProjectID.String(),
		strings.Join(it.Tags, ", "),
		created,
	}
}
