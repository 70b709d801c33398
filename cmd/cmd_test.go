package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/costbasis"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLots = `{"symbol":"VWRL","date":"2024-01-10","shares":"4","price":"50","fx":"0.79"}
{"symbol":"VUSA","date":"2025-03-15","shares":"10","price":"120","fx":"0.78"}
{"symbol":"VUSA","date":"2023-06-01","shares":"10","price":"100","fx":"0.8"}
`

const testMarket = `{"symbol":"VUSA","price":"130","fx":"0.75"}
{"symbol":"VWRL","price":"45","fx":"0.75"}
`

// setup points the app globals to a temporary workspace and captures outputs.
func setup(t *testing.T) (dir string, out, errOut *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lots.jsonl"), []byte(testLots), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "market.jsonl"), []byte(testMarket), 0644))

	oldLots, oldMarket, oldDB, oldRaw, oldOut, oldErr, oldLevel := lotsFile, marketFile, snapshotDB, raw, stdout, stderr, logLevel
	t.Cleanup(func() {
		lotsFile, marketFile, snapshotDB, raw, stdout, stderr, logLevel = oldLots, oldMarket, oldDB, oldRaw, oldOut, oldErr, oldLevel
	})

	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	lotsFile = filepath.Join(dir, "lots.jsonl")
	marketFile = filepath.Join(dir, "market.jsonl")
	snapshotDB = filepath.Join(dir, "snapshots.db")
	raw = true
	logLevel = "error"
	stdout, stderr = out, errOut
	return dir, out, errOut
}

// run executes c with args as if called from the command line.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return c.Execute(context.Background(), f)
}

func TestSummaryCmd_JSON(t *testing.T) {
	_, out, errOut := setup(t)

	status := run(t, &summaryCmd{}, "-d", "2025-06-15", "-s", "VUSA", "-price", "-json")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())

	var s costbasis.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &s))
	assert.Equal(t, "VUSA", s.Symbol)
	assert.Equal(t, 2, s.LotCount())
	assert.Equal(t, "$2,200.00", s.TotalCostUSD.String())
	assert.Equal(t, "10", s.LongTermShares.String())

	p, ok := s.Pricing()
	require.True(t, ok)
	assert.Equal(t, "$400.00", p.UnrealizedPnLUSD.String())
}

func TestSummaryCmd_Overview(t *testing.T) {
	_, out, errOut := setup(t)

	status := run(t, &summaryCmd{}, "-d", "2025-06-15")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())

	md := out.String()
	assert.Contains(t, md, "VUSA")
	assert.Contains(t, md, "VWRL")
	assert.Less(t, strings.Index(md, "VUSA"), strings.Index(md, "VWRL"))
}

func TestSummaryCmd_Errors(t *testing.T) {
	_, _, errOut := setup(t)

	assert.Equal(t, subcommands.ExitUsageError, run(t, &summaryCmd{}, "-d", "yesterday"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &summaryCmd{}, "-s", "NOPE"))
	assert.Contains(t, errOut.String(), "NOPE")
}

func TestLotsCmd(t *testing.T) {
	_, out, errOut := setup(t)

	assert.Equal(t, subcommands.ExitUsageError, run(t, &lotsCmd{}))

	status := run(t, &lotsCmd{}, "-d", "2025-06-15", "-s", "VUSA")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
	md := out.String()
	assert.Contains(t, md, "long-term")
	assert.Contains(t, md, "short-term")
	assert.Less(t, strings.Index(md, "2023-06-01"), strings.Index(md, "2025-03-15"))
}

func TestImportCmd(t *testing.T) {
	dir, out, errOut := setup(t)
	lotsFile = filepath.Join(dir, "imported.jsonl") // does not exist yet

	export := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(export, []byte(`{
		"purchases": [
			{"symbol": "VUSA", "executedAt": "2024-01-10T09:30:00Z", "quantity": 10, "priceUsd": 85.1, "fxRate": 0.79},
			{"symbol": "VUSA", "executedAt": "2023-05-02T14:00:00Z", "quantity": 2.5, "priceUsd": 80, "fxRate": 0.8}
		]
	}`), 0644))

	status := run(t, &importCmd{}, export)
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
	assert.Contains(t, out.String(), "2 lots")

	content, err := os.ReadFile(lotsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2023-05-02")
	assert.Contains(t, lines[1], "2024-01-10")
}

func TestImportCmd_Twice(t *testing.T) {
	dir, _, errOut := setup(t)

	export := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(export, []byte(`{"purchases": [
		{"symbol": "VUSA", "executedAt": "2023-06-01", "quantity": 10, "priceUsd": 100, "fxRate": 0.8},
		{"symbol": "VUSA", "executedAt": "2025-04-01", "quantity": 3, "priceUsd": 125, "fxRate": 0.77},
		{"symbol": "VUSA", "executedAt": "2025-04-01", "quantity": 3, "priceUsd": 125, "fxRate": 0.77}
	]}`), 0644))

	// the first purchase is already in the lots file, the two others are new.
	require.Equal(t, subcommands.ExitSuccess, run(t, &importCmd{}, export), errOut.String())
	book, err := DecodeLots()
	require.NoError(t, err)
	assert.Equal(t, 5, book.Len())

	require.Equal(t, subcommands.ExitSuccess, run(t, &importCmd{}, export), errOut.String())
	book, err = DecodeLots()
	require.NoError(t, err)
	assert.Equal(t, 5, book.Len(), "importing the same export again must not record lots twice")

	require.Equal(t, subcommands.ExitSuccess, run(t, &importCmd{}, "-force", export), errOut.String())
	book, err = DecodeLots()
	require.NoError(t, err)
	assert.Equal(t, 8, book.Len())
}

func TestImportCmd_DryRun(t *testing.T) {
	dir, out, errOut := setup(t)
	before, err := os.ReadFile(lotsFile)
	require.NoError(t, err)

	export := filepath.Join(dir, "orders.json")
	require.NoError(t, os.WriteFile(export, []byte(`{"orders": [
		{"side": "BUY", "when": "03/02/2025", "qty": "1", "px": "200", "fx": "0.8"},
		{"side": "SELL", "when": "04/02/2025", "qty": "1", "px": "210", "fx": "0.8"}
	]}`), 0644))

	status := run(t, &importCmd{}, "-n",
		"-lots", `$.orders[?(@.side=="BUY")]`,
		"-symbol", "", "-default-symbol", "IWDA",
		"-date", "$.when", "-date-layout", "02/01/2006",
		"-shares", "$.qty", "-price", "$.px", "-fx", "$.fx",
		export)
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())

	assert.Contains(t, out.String(), `"symbol":"IWDA"`)
	assert.Contains(t, out.String(), `"date":"2025-02-03"`)
	assert.Equal(t, 4, strings.Count(out.String(), "\n"))

	after, err := os.ReadFile(lotsFile)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "dry run must not write the lots file")
}

func TestFmtCmd(t *testing.T) {
	_, out, errOut := setup(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &fmtCmd{}, "-check"), errOut.String())
	assert.Contains(t, out.String(), "3 lots")

	require.Equal(t, subcommands.ExitSuccess, run(t, &fmtCmd{}), errOut.String())
	content, err := os.ReadFile(lotsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"2023-06-01"`)
	assert.Contains(t, lines[1], `"2025-03-15"`)
	assert.Contains(t, lines[2], `"VWRL"`)
}

func TestExportCmd(t *testing.T) {
	dir, _, errOut := setup(t)
	output := filepath.Join(dir, "out.xlsx")

	status := run(t, &exportCmd{}, "-d", "2025-06-15", "-price", "-o", output)
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("PK")), "xlsx files are zip archives")
}

func TestSnapshotCmd(t *testing.T) {
	_, out, errOut := setup(t)

	status := run(t, &snapshotCmd{}, "-d", "2025-06-15", "-s", "VUSA", "-price")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
	fields := strings.Fields(out.String())
	require.Len(t, fields, 3)
	id := fields[0]
	assert.Equal(t, "VUSA", fields[1])

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &snapshotCmd{}, "-list"), errOut.String())
	assert.Contains(t, out.String(), id)
	assert.Contains(t, out.String(), "| yes |")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &snapshotCmd{}, "-get", id), errOut.String())
	assert.Contains(t, out.String(), "VUSA")
	assert.NotContains(t, errOut.String(), "Warning")

	assert.Equal(t, subcommands.ExitFailure, run(t, &snapshotCmd{}, "-get", "missing"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &snapshotCmd{}, "-list", "-get", id))
}

func TestSnapshotCmd_Drifted(t *testing.T) {
	_, out, errOut := setup(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &snapshotCmd{}, "-d", "2025-06-15", "-s", "VUSA"), errOut.String())
	id := strings.Fields(out.String())[0]

	// edit the reported lot count behind the store's back.
	db, err := sql.Open("sqlite", snapshotDB)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE snapshots SET body = replace(body, '"lotCount":', '"lotCount":9')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &snapshotCmd{}, "-get", id), errOut.String())
	assert.Contains(t, errOut.String(), "Warning: snapshot "+id)
	assert.Contains(t, out.String(), "VUSA")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &snapshotCmd{}, "-list"), errOut.String())
	assert.Contains(t, out.String(), "| yes |")
}

func TestTopicCmd(t *testing.T) {
	_, out, _ := setup(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &topicCmd{}))
	assert.Contains(t, out.String(), "holding-period")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &topicCmd{}, "dates"))
	assert.Contains(t, out.String(), "# Dates")

	assert.Equal(t, subcommands.ExitFailure, run(t, &topicCmd{}, "nope"))
}

func TestTopicCmd_List(t *testing.T) {
	_, out, errOut := setup(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &topicCmd{}, "-list"))
	names := strings.Fields(out.String())
	assert.Contains(t, names, "snapshot")
	assert.NotContains(t, names, "readme")

	assert.Equal(t, subcommands.ExitFailure, run(t, &topicCmd{}, "nope"))
	assert.Contains(t, errOut.String(), "Available topics:")
	assert.Contains(t, errOut.String(), "holding-period")
}
