package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/thejasondev/groundops/internal/common"
	"github.com/thejasondev/groundops/internal/constants"
	"github.com/thejasondev/groundops/internal/models/dtos"
	"github.com/thejasondev/groundops/internal/models/entities"
)

// reportMissing is the sentinel for absent timestamps in report contexts.
const reportMissing = "-"

// ReportService assembles the operations report for a flight: per-task
// timestamps and durations, the actual ground time, the final delay summary
// and the detailed delay analysis.
type ReportService struct {
	engine *TurnaroundEngine
}

func NewReportService(engine *TurnaroundEngine) *ReportService {
	return &ReportService{engine: engine}
}

// BuildReport derives every report field from the flight record. Works for
// in-progress flights too; unrecorded fields render as "-".
func (svc *ReportService) BuildReport(flight entities.Flight) dtos.OperationsReportDto {
	scheduled := svc.engine.ComputeScheduled(flight.ETA, flight.ETD)

	rows := make([]dtos.ReportRow, 0, len(constants.AllTasks()))
	for _, task := range constants.AllTasks() {
		op := flight.Operations[task]
		row := dtos.ReportRow{
			Task:          task,
			Start:         orMissing(op.Start),
			End:           orMissing(op.End),
			Duration:      common.DurationBetween(op.Start, op.End, reportMissing),
			Instantaneous: constants.IsInstantaneous(task),
		}
		rows = append(rows, row)
	}

	arrivalEnd := flight.ArrivalAnchorTime()
	departureStart := flight.DepartureAnchorTime()

	summary := dtos.DelaySummary{Status: constants.DelayPending, Formatted: "Pending"}
	if departureStart != "" {
		delay := common.TimeToMinutes(departureStart) - common.TimeToMinutes(flight.ETD)
		status, formatted := svc.engine.ClassifyDelay(delay)
		summary = dtos.DelaySummary{Minutes: delay, Status: status, Formatted: formatted}
	}

	return dtos.OperationsReportDto{
		Flight:        flight,
		Scheduled:     scheduled,
		Rows:          rows,
		ActualGround:  common.DurationBetween(arrivalEnd, departureStart, reportMissing),
		DelaySummary:  summary,
		DelayAnalysis: svc.engine.ComputeDelayAnalysis(flight.ETA, flight.ETD, arrivalEnd, departureStart),
	}
}

// ExportXLSX renders the report as a spreadsheet for handoff outside the
// dashboard.
func (svc *ReportService) ExportXLSX(flight entities.Flight) (*bytes.Buffer, error) {
	report := svc.BuildReport(flight)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Operations Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := [][]interface{}{
		{"Flight", flight.FlightNumber, "Airline", flight.Airline},
		{"Destination", flight.Destination},
		{"ETA", flight.ETA, "ETD", flight.ETD},
		{"ATA", orMissing(flight.ATA), "ATD", orMissing(flight.ATD)},
		{"Scheduled TPT", report.Scheduled.Formatted, "Actual ground time", report.ActualGround},
		{"Delay", report.DelaySummary.Formatted},
		{"Arrival delay", report.DelayAnalysis.Arrival.Formatted, "Departure delay", report.DelayAnalysis.Departure.Formatted},
	}
	for i, row := range header {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write header row: %w", err)
		}
	}

	tableStart := len(header) + 2
	columns := []interface{}{"Task", "Start", "End", "Duration"}
	cell, _ := excelize.CoordinatesToCellName(1, tableStart)
	if err := f.SetSheetRow(sheet, cell, &columns); err != nil {
		return nil, fmt.Errorf("failed to write table header: %w", err)
	}
	for i, row := range report.Rows {
		values := []interface{}{row.Task, row.Start, row.End, row.Duration}
		cell, _ := excelize.CoordinatesToCellName(1, tableStart+1+i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write task row: %w", err)
		}
	}

	if report.Flight.Notes != "" {
		notesRow := tableStart + len(report.Rows) + 2
		cell, _ := excelize.CoordinatesToCellName(1, notesRow)
		notes := []interface{}{"Notes", report.Flight.Notes}
		if err := f.SetSheetRow(sheet, cell, &notes); err != nil {
			return nil, fmt.Errorf("failed to write notes: %w", err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "D", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf, nil
}

func orMissing(v string) string {
	if v == "" {
		return reportMissing
	}
	return v
}
