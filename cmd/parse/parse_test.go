package parse_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/bank-ingest/cmd/detect"
	"fjacquet/bank-ingest/cmd/parse"
	"fjacquet/bank-ingest/cmd/root"
)

const statement = `בנק לאומי - תנועות בחשבון
תאריך,תיאור,חובה,זכות
01/03/2024,משכורת מרץ,,12000.00
04/03/2024,העברה לחיסכון,500.00,
`

func init() {
	root.Init()
	root.Cmd.AddCommand(parse.Cmd, detect.Cmd)
}

func writeStatement(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leumi.csv")
	require.NoError(t, os.WriteFile(path, []byte(statement), 0600))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetErr(&errOut)
	root.Cmd.SetArgs(args)
	err := root.Cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestParseCommand_Stdout(t *testing.T) {
	out, errOut, err := run(t, "parse", "--no-ai", "--delimiter", ";", writeStatement(t))
	require.NoError(t, err, errOut)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "date;value_date;description;amount")
	assert.Contains(t, lines[1], "2024-03-01;;משכורת מרץ;12000.00;income")
	assert.Contains(t, lines[2], "-500.00;expense")
	assert.Contains(t, errOut, "LEUMI, 2 transactions")
}

func TestParseCommand_File(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.csv")
	_, errOut, err := run(t, "parse", "--no-ai", "--delimiter", ",", "-o", target, writeStatement(t))
	require.NoError(t, err, errOut)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "העברה לחיסכון")
}

func TestParseCommand_Rejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("foo,bar,baz\naaa,bbb,ccc\n"), 0600))

	_, errOut, err := run(t, "parse", "--no-ai", "-o", "", path)
	require.Error(t, err)
	assert.Contains(t, errOut, "missing required columns")
}

func TestDetectCommand(t *testing.T) {
	out, _, err := run(t, "detect", "--no-ai", writeStatement(t))
	require.NoError(t, err)
	assert.Contains(t, out, "institution: LEUMI")
	assert.Contains(t, out, "format:      delimited")
	assert.Contains(t, out, "debit")
	assert.Contains(t, out, "(header)")
}
