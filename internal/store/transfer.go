package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/eastway/batchlaunch/internal/account"
	"github.com/eastway/batchlaunch/internal/textenc"
)

// ExportJSON writes all accounts as an indented JSON array.
func ExportJSON(ctx context.Context, st Store, w io.Writer) error {
	accts, err := st.List(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(accts)
}

// ImportJSON reads a JSON array of accounts and saves each complete one.
// Rows lacking login or secret are skipped, not errors. Text fields go
// through encoding repair and the server tag is coerced to canonical form.
// Returns the number of accounts saved.
func ImportJSON(ctx context.Context, st Store, r io.Reader) (int, error) {
	var rows []account.Account
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return 0, fmt.Errorf("decode accounts: %w", err)
	}
	return saveRows(ctx, st, rows)
}

var csvHeader = []string{"login", "secret", "server", "character", "description", "owner"}

// ExportCSV writes all accounts as CSV with a header row.
func ExportCSV(ctx context.Context, st Store, w io.Writer) error {
	accts, err := st.List(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range accts {
		rec := []string{a.Login, a.Secret, string(a.Server), a.Character, a.Description, a.Owner}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads CSV rows (header optional) and saves each complete one.
// Returns the number of accounts saved.
func ImportCSV(ctx context.Context, st Store, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var rows []account.Account
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == csvHeader[0] {
				continue
			}
		}
		var a account.Account
		for i, v := range rec {
			switch i {
			case 0:
				a.Login = v
			case 1:
				a.Secret = v
			case 2:
				a.Server = account.ServerTag(v)
			case 3:
				a.Character = v
			case 4:
				a.Description = v
			case 5:
				a.Owner = v
			}
		}
		rows = append(rows, a)
	}
	return saveRows(ctx, st, rows)
}

func saveRows(ctx context.Context, st Store, rows []account.Account) (int, error) {
	saved := 0
	for _, a := range rows {
		if a.Login == "" || a.Secret == "" {
			slog.Warn("import: skipping row without login or secret", "login", a.Login)
			continue
		}
		a.Login = textenc.Repair(a.Login)
		a.Character = textenc.Repair(a.Character)
		a.Description = textenc.Repair(a.Description)
		a.Owner = textenc.Repair(a.Owner)
		a.Server = account.NormalizeServer(string(a.Server))
		if a.ID == "" {
			a.ID = account.NewID()
		}
		if err := st.Save(ctx, a); err != nil {
			return saved, fmt.Errorf("save %s: %w", a.Login, err)
		}
		saved++
	}
	return saved, nil
}
