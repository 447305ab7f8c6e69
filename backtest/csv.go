package backtest

import (
	"encoding/csv"
	"io"
	"os"
)

// WriteTradesCSV exports the trade log as date,type,price,shares rows.
func WriteTradesCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"date", "type", "price", "shares"}); err != nil {
		return err
	}
	for _, t := range trades {
		if err := cw.Write([]string{
			t.Date.Format("2006-01-02"),
			string(t.Type),
			t.Price.String(),
			t.Shares.String(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTradesCSVFile writes the trade log to path, creating or truncating it.
func WriteTradesCSVFile(path string, trades []Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteTradesCSV(f, trades)
}
