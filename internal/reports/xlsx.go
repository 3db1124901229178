package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// StockActivityXLSXFilename names the spreadsheet export for a given month.
func StockActivityXLSXFilename(year int, month time.Month) string {
	return fmt.Sprintf("Stock_Activity_%04d-%02d.xlsx", year, int(month))
}

// WriteStockActivityXLSX renders the same monthly document as the CSV export
// as a single-sheet workbook.
func WriteStockActivityXLSX(w io.Writer, activity StockActivity) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	row := 1
	writeRow := func(values ...interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}

	monthLabel := time.Date(activity.Year, activity.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	if err := writeRow("STOCK ACTIVITY REPORT"); err != nil {
		return err
	}
	if err := writeRow("Period", monthLabel); err != nil {
		return err
	}
	if err := writeRow(); err != nil {
		return err
	}

	if err := writeRow("TRANSACTION LOG"); err != nil {
		return err
	}
	if err := writeRow("Date", "Product", "Action", "Quantity", "Previous Stock", "New Stock", "Reason"); err != nil {
		return err
	}
	for _, movement := range activity.Movements {
		err := writeRow(
			movement.CreatedAt.Format(exportDateLayout),
			movement.ProductName,
			movement.Action.String(),
			movement.Quantity,
			movement.PreviousStock,
			movement.NewStock,
			stringOrEmpty(movement.Reason),
		)
		if err != nil {
			return err
		}
	}
	if err := writeRow(); err != nil {
		return err
	}

	if err := writeRow("MONTHLY SUMMARY BY PRODUCT"); err != nil {
		return err
	}
	if err := writeRow("Product", "Stock In", "Stock Out", "Net Change"); err != nil {
		return err
	}
	for _, summary := range activity.Summary {
		if err := writeRow(summary.Product, summary.StockIn, summary.StockOut, summary.NetChange); err != nil {
			return err
		}
	}
	if err := writeRow(); err != nil {
		return err
	}

	if err := writeRow("CURRENT INVENTORY"); err != nil {
		return err
	}
	if err := writeRow("Product", "Category", "Department", "Stock", "Price", "Status"); err != nil {
		return err
	}
	for _, item := range activity.Items {
		err := writeRow(
			item.Name,
			item.Category,
			item.Department,
			item.Stock,
			item.Price.StringFixed(2),
			item.Status.String(),
		)
		if err != nil {
			return err
		}
	}
	if err := writeRow(); err != nil {
		return err
	}

	if err := writeRow("TOTALS"); err != nil {
		return err
	}
	if err := writeRow("Total Stock In", activity.TotalIn); err != nil {
		return err
	}
	if err := writeRow("Total Stock Out", activity.TotalOut); err != nil {
		return err
	}
	if err := writeRow("Inventory Value", activity.Value.StringFixed(2)); err != nil {
		return err
	}

	return f.Write(w)
}
