package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCanonicalNamesAreIdentity(t *testing.T) {
	n, err := LoadNormalizer("")
	require.NoError(t, err)

	for _, name := range []string{
		"ASB", "BNZ", "ANZ", "Westpac", "Kiwibank", "TSB Bank", "SBS Bank",
		"Co-operative Bank", "Heartland Bank", "Bank of China", "Bank of Baroda",
		"China Construction Bank", "ICBC", "Kookmin", "Heretaunga Building Society",
	} {
		require.Equal(t, name, n.Normalize(name))
		// idempotent: a second pass changes nothing
		require.Equal(t, name, n.Normalize(n.Normalize(name)))
	}
}

func TestNormalizeCleansAndResolvesVariants(t *testing.T) {
	n, err := LoadNormalizer("")
	require.NoError(t, err)

	cases := map[string]string{
		"  ASB Bank  ":              "ASB",
		"asb":                       "ASB",
		"Sponsored: Kiwibank":       "Kiwibank",
		"Westpac NZ":                "Westpac",
		"TSB":                       "TSB Bank",
		"The Co-operative Bank":     "Co-operative Bank",
		"Heartland Bank logo":       "Heartland Bank",
		"Bank of New Zealand":       "BNZ",
		"contact Heartland":         "Heartland Bank",
		"China Construction Bank":   "China Construction Bank",
		"Some Future Bank":          "Some Future Bank", // unknown passes through
		"Some Future Bank Limited":  "Some Future Bank", // ...after suffix cleanup
		"Sponsored: Mystery Lender": "Mystery Lender",
	}
	for raw, want := range cases {
		require.Equal(t, want, n.Normalize(raw), "raw label %q", raw)
	}
}

func TestNormalizeEmptyMeansNoBankContext(t *testing.T) {
	n, err := LoadNormalizer("")
	require.NoError(t, err)

	require.Equal(t, "", n.Normalize(""))
	require.Equal(t, "", n.Normalize("   \t "))
}

func TestLoadNormalizerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banks.yaml")
	table := `
prefixes: ["the "]
suffixes: [" plc"]
aliases:
  first credit union: First Credit Union
`
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

	n, err := LoadNormalizer(path)
	require.NoError(t, err)
	require.Equal(t, "First Credit Union", n.Normalize("The First Credit Union PLC"))

	_, err = LoadNormalizer(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestResolveKnownSpellingVariants(t *testing.T) {
	r, err := LoadResolver("")
	require.NoError(t, err)

	floating, err := r.Resolve("Variable floating")
	require.NoError(t, err)
	require.Equal(t, "Floating", floating.Name)
	require.Equal(t, 1, floating.Months)

	// every spelling variant lands on the same canonical tenor
	alt, err := r.Resolve("floating")
	require.NoError(t, err)
	require.Equal(t, floating, alt)
	alt, err = r.Resolve(" Variable ")
	require.NoError(t, err)
	require.Equal(t, floating, alt)

	eighteen, err := r.Resolve("18 months")
	require.NoError(t, err)
	require.Equal(t, 18, eighteen.Months)

	fiveYears, err := r.Resolve("5 years")
	require.NoError(t, err)
	require.Equal(t, 60, fiveYears.Months)
}

func TestResolveUnknownLabel(t *testing.T) {
	r, err := LoadResolver("")
	require.NoError(t, err)

	_, err = r.Resolve("7 fortnights")
	require.ErrorIs(t, err, ErrUnknownTenor)
}

func TestResolverColumnsAllResolve(t *testing.T) {
	r, err := LoadResolver("")
	require.NoError(t, err)

	columns := r.Columns()
	require.NotEmpty(t, columns)
	for _, column := range columns {
		_, err := r.Resolve(column)
		require.NoError(t, err, "column %q", column)
	}
}

func TestLoadResolverRejectsBadTables(t *testing.T) {
	dir := t.TempDir()

	conflicting := `
tenors:
  - {name: 1 year, months: 12, labels: ["a year"]}
  - {name: 12 months, months: 12, labels: ["a year"]}
columns: []
`
	path := filepath.Join(dir, "conflict.yaml")
	require.NoError(t, os.WriteFile(path, []byte(conflicting), 0o644))
	_, err := LoadResolver(path)
	require.Error(t, err)

	badColumn := `
tenors:
  - {name: 1 year, months: 12, labels: []}
columns: ["2 years"]
`
	path = filepath.Join(dir, "badcolumn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(badColumn), 0o644))
	_, err = LoadResolver(path)
	require.Error(t, err)
}
